package engine

type Category string

const (
	CatOnes          Category = "ones"
	CatTwos          Category = "twos"
	CatThrees        Category = "threes"
	CatFours         Category = "fours"
	CatFives         Category = "fives"
	CatSixes         Category = "sixes"
	CatThreeOfAKind  Category = "three_of_a_kind"
	CatFourOfAKind   Category = "four_of_a_kind"
	CatFullHouse     Category = "full_house"
	CatSmallStraight Category = "small_straight"
	CatLargeStraight Category = "large_straight"
	CatChance        Category = "chance"
	CatYahtzee       Category = "yahtzee"
)

// Categories is the scorecard in display order.
var Categories = []Category{
	CatOnes, CatTwos, CatThrees, CatFours, CatFives, CatSixes,
	CatThreeOfAKind, CatFourOfAKind, CatFullHouse,
	CatSmallStraight, CatLargeStraight, CatChance, CatYahtzee,
}

var upperFaces = map[Category]int{
	CatOnes: 1, CatTwos: 2, CatThrees: 3, CatFours: 4, CatFives: 5, CatSixes: 6,
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", ErrUnknownCategory
}

// Score returns the points the dice are worth in category c. Unknown
// categories score 0; callers validate with ParseCategory first.
func Score(c Category, d Dice) int {
	var counts [7]int
	sum := 0
	for _, v := range d {
		if v >= 1 && v <= 6 {
			counts[v]++
		}
		sum += v
	}

	if face, ok := upperFaces[c]; ok {
		return counts[face] * face
	}

	maxCount := 0
	for _, n := range counts {
		maxCount = max(maxCount, n)
	}

	switch c {
	case CatThreeOfAKind:
		if maxCount >= 3 {
			return sum
		}
	case CatFourOfAKind:
		if maxCount >= 4 {
			return sum
		}
	case CatFullHouse:
		if maxCount == 5 || hasCounts(counts, 3, 2) {
			return 25
		}
	case CatSmallStraight:
		if longestRun(counts) >= 4 {
			return 30
		}
	case CatLargeStraight:
		if longestRun(counts) == 5 {
			return 40
		}
	case CatChance:
		return sum
	case CatYahtzee:
		if maxCount == 5 {
			return 50
		}
	}
	return 0
}

func hasCounts(counts [7]int, a, b int) bool {
	var seenA, seenB bool
	for _, n := range counts[1:] {
		switch n {
		case a:
			seenA = true
		case b:
			seenB = true
		}
	}
	return seenA && seenB
}

// longestRun is the length of the longest run of consecutive faces present.
func longestRun(counts [7]int) int {
	best, run := 0, 0
	for face := 1; face <= 6; face++ {
		if counts[face] > 0 {
			run++
			best = max(best, run)
		} else {
			run = 0
		}
	}
	return best
}
