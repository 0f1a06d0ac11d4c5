package game

// Answer values for the four phase-1 questions. Each question numbers its
// own options from zero; value 2 is always the long-shot "same"/"rainbow"
// option that makes the whole group drink when it hits.
const (
	ValueRed   = 0
	ValueBlack = 1

	ValueHigher = 0
	ValueLower  = 1
	ValueSame   = 2

	ValueBetween = 0
	ValueOutside = 1

	ValueHaveSuit = 0
	ValueNoSuit   = 1
	ValueRainbow  = 2
)

type Answer struct {
	Answer string `json:"answer"`
	Value  int    `json:"value"`
}

type Question struct {
	Question string   `json:"question"`
	Answers  []Answer `json:"answers"`
}

// QuestionForHandSize returns the phase-1 question a player with the given
// hand size is facing, or nil when their hand is complete.
func QuestionForHandSize(n int) *Question {
	switch n {
	case 0:
		return &Question{
			Question: "Red or black?",
			Answers: []Answer{
				{Answer: "Red", Value: ValueRed},
				{Answer: "Black", Value: ValueBlack},
			},
		}
	case 1:
		return &Question{
			Question: "Higher, lower or the same?",
			Answers: []Answer{
				{Answer: "Higher", Value: ValueHigher},
				{Answer: "Lower", Value: ValueLower},
				{Answer: "The same", Value: ValueSame},
			},
		}
	case 2:
		return &Question{
			Question: "Between the rank of your cards or outside of them?",
			Answers: []Answer{
				{Answer: "In between", Value: ValueBetween},
				{Answer: "Outside", Value: ValueOutside},
				{Answer: "The same", Value: ValueSame},
			},
		}
	case 3:
		return &Question{
			Question: "Do you have the next suit or not?",
			Answers: []Answer{
				{Answer: "I have the suit already", Value: ValueHaveSuit},
				{Answer: "I don't have the suit", Value: ValueNoSuit},
				{Answer: "Rainbow", Value: ValueRainbow},
			},
		}
	default:
		return nil
	}
}

func question1Outcome(value int, drawn Card) bool {
	if value == ValueRed {
		return drawn.IsRed()
	}
	return !drawn.IsRed()
}

func question2Outcome(value int, held, drawn Card) bool {
	switch value {
	case ValueHigher:
		return held.Less(drawn)
	case ValueLower:
		return drawn.Less(held)
	default:
		return drawn.Value() == held.Value()
	}
}

// question3Outcome treats the two held cards as an open interval, whatever
// order they were drawn in.
func question3Outcome(value int, first, second, drawn Card) bool {
	between := (first.Less(drawn) && drawn.Less(second)) ||
		(second.Less(drawn) && drawn.Less(first))
	switch value {
	case ValueBetween:
		return between
	case ValueOutside:
		return !between
	default:
		return drawn.Rank == first.Rank || drawn.Rank == second.Rank
	}
}

func question4Outcome(value int, held []Card, drawn Card) bool {
	switch value {
	case ValueHaveSuit:
		for _, c := range held {
			if c.Suit == drawn.Suit {
				return true
			}
		}
		return false
	case ValueNoSuit:
		for _, c := range held {
			if c.Suit == drawn.Suit {
				return false
			}
		}
		return true
	default:
		// Rainbow: all four suits distinct.
		suits := map[Suit]bool{drawn.Suit: true}
		for _, c := range held {
			suits[c.Suit] = true
		}
		return len(suits) == 4
	}
}
