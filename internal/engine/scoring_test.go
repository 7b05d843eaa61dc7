package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name string
		cat  Category
		dice Dice
		want int
	}{
		{"yahtzee of threes", CatYahtzee, Dice{3, 3, 3, 3, 3}, 50},
		{"threes from yahtzee", CatThrees, Dice{3, 3, 3, 3, 3}, 15},
		{"five of a kind is a full house", CatFullHouse, Dice{3, 3, 3, 3, 3}, 25},
		{"full house", CatFullHouse, Dice{2, 2, 3, 3, 3}, 25},
		{"two pair is not a full house", CatFullHouse, Dice{2, 2, 3, 3, 4}, 0},
		{"four of a kind is not a full house", CatFullHouse, Dice{2, 3, 3, 3, 3}, 0},
		{"large straight", CatLargeStraight, Dice{1, 2, 3, 4, 5}, 40},
		{"large straight high", CatLargeStraight, Dice{6, 2, 3, 4, 5}, 40},
		{"large straight needs five", CatLargeStraight, Dice{1, 2, 3, 4, 6}, 0},
		{"small straight from large", CatSmallStraight, Dice{1, 2, 3, 4, 5}, 30},
		{"small straight with pair", CatSmallStraight, Dice{3, 4, 5, 6, 3}, 30},
		{"small straight broken", CatSmallStraight, Dice{1, 2, 4, 5, 6}, 0},
		{"four of a kind sums", CatFourOfAKind, Dice{6, 6, 6, 6, 1}, 25},
		{"three of a kind from four", CatThreeOfAKind, Dice{6, 6, 6, 6, 1}, 25},
		{"three of a kind missing", CatThreeOfAKind, Dice{6, 6, 5, 5, 1}, 0},
		{"four of a kind missing", CatFourOfAKind, Dice{6, 6, 6, 5, 1}, 0},
		{"chance", CatChance, Dice{1, 2, 3, 4, 6}, 16},
		{"no sixes", CatSixes, Dice{1, 2, 3, 4, 5}, 0},
		{"two ones", CatOnes, Dice{1, 1, 3, 4, 5}, 2},
		{"no yahtzee", CatYahtzee, Dice{1, 1, 1, 1, 2}, 0},
		{"unknown category", Category("bonus"), Dice{1, 1, 1, 1, 1}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.cat, tc.dice))
		})
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCategory("bonus_yahtzee")
	assert.ErrorIs(t, err, ErrUnknownCategory)
	_, err = ParseCategory("Ones")
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Len(t, Categories, 13)
}

func genDice() *rapid.Generator[Dice] {
	return rapid.Custom(func(t *rapid.T) Dice {
		var d Dice
		for i := range d {
			d[i] = rapid.IntRange(1, 6).Draw(t, "face")
		}
		return d
	})
}

func TestScore_OrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := genDice().Draw(t, "dice")
		perm := rapid.Permutation(d[:]).Draw(t, "perm")
		var shuffled Dice
		copy(shuffled[:], perm)

		for _, c := range Categories {
			if Score(c, d) != Score(c, shuffled) {
				t.Fatalf("%s: %v scored %d, permutation %v scored %d", c, d, Score(c, d), shuffled, Score(c, shuffled))
			}
		}
	})
}

func TestScore_NeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := genDice().Draw(t, "dice")
		sum := 0
		for _, v := range d {
			sum += v
		}
		for _, c := range Categories {
			got := Score(c, d)
			if got < 0 {
				t.Fatalf("%s: negative score %d for %v", c, got, d)
			}
			if c == CatChance && got != sum {
				t.Fatalf("chance: got %d want %d", got, sum)
			}
		}
	})
}
