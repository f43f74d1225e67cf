package instrument

const (
	frequencyInstructions = "rate how often you have been bothered by this over the past 2 weeks:\n" +
		"1 = Not at all\n" +
		"2 = Several days\n" +
		"3 = More than half the days\n" +
		"4 = Nearly every day\n" +
		"5 = Every day"

	strongAgreeInstructions = "Rate this statement on a scale of 1-5:\n" +
		"1 = Strongly Disagree\n" +
		"2 = Disagree\n" +
		"3 = Neutral\n" +
		"4 = Agree\n" +
		"5 = Strongly Agree"

	agreementInstructions = "rate your agreement with this statement on a scale of 1-5:\n" +
		"1 = Strongly Disagree\n" +
		"2 = Disagree\n" +
		"3 = Neutral\n" +
		"4 = Agree\n" +
		"5 = Strongly Agree"

	bfiInstructions = "Rate how well this describes you on a scale of 1-5:\n" +
		"1 = Disagree strongly\n" +
		"2 = Disagree a little\n" +
		"3 = Neither agree nor disagree\n" +
		"4 = Agree a little\n" +
		"5 = Agree strongly\n\n" +
		"\"I see myself as someone who...\""
)

// builtins clinical screens aggregate by sum, trait inventories by mean
func builtins() []Instrument {
	return []Instrument{
		levenson(),
		bfi(),
		darkTriad(),
		phq9(),
		gad7(),
		phq6BC(),
		phq3A(),
	}
}

func levenson() Instrument {
	return Instrument{
		ShortName:    "levenson",
		FullName:     "Levenson Self-Report Psychopathy Scale",
		Scale:        LikertFive,
		Aggregation:  AggregateMean,
		Instructions: strongAgreeInstructions,
		Items: []Item{
			{Number: 1, Text: "Success is based on survival of the fittest; I am not concerned about the losers", Factor: "primary"},
			{Number: 2, Text: "For me, what's right is whatever I can get away with", Factor: "primary"},
			{Number: 3, Text: "In today's world, I feel justified in doing anything I can get away with to succeed", Factor: "primary"},
			{Number: 4, Text: "My main purpose in life is getting as many goodies as possible", Factor: "primary"},
			{Number: 5, Text: "Making a lot of money is my most important goal", Factor: "primary"},
			{Number: 6, Text: "I let others worry about higher values; my main concern is with the bottom line", Factor: "primary"},
			{Number: 7, Text: "People who are stupid enough to get ripped off usually deserve it", Factor: "primary"},
			{Number: 8, Text: "Looking out for myself is my top priority", Factor: "primary"},
			{Number: 9, Text: "I tell other people what they want to hear so that they will do what I want them to do", Factor: "primary"},
			{Number: 10, Text: "I would be upset if my success came at someone else's expense", Factor: "primary", Reversed: true},
			{Number: 11, Text: "I often admire a really clever scam", Factor: "primary"},
			{Number: 12, Text: "I make a point of trying not to hurt others in pursuit of my goals", Factor: "primary", Reversed: true},
			{Number: 13, Text: "I enjoy manipulating other people's feelings", Factor: "primary"},
			{Number: 14, Text: "I feel bad if my words hurt someone", Factor: "primary", Reversed: true},
			{Number: 15, Text: "Even if I were trying very hard to sell something, I wouldn't lie about it", Factor: "primary", Reversed: true},
			{Number: 16, Text: "Cheating is not justified because it is unfair to others", Factor: "primary", Reversed: true},
			{Number: 17, Text: "I find myself in the same kinds of trouble, time after time", Factor: "secondary"},
			{Number: 18, Text: "I am often bored", Factor: "secondary"},
			{Number: 19, Text: "I find that I am able to pursue one goal for a long time", Factor: "secondary", Reversed: true},
			{Number: 20, Text: "I don't plan anything very far in advance", Factor: "secondary"},
			{Number: 21, Text: "I quickly lose interest in tasks I start", Factor: "secondary"},
			{Number: 22, Text: "Most of my problems are due to the fact that other people just don't understand me", Factor: "secondary"},
			{Number: 23, Text: "Before I do anything, I carefully consider the possible consequences", Factor: "secondary", Reversed: true},
			{Number: 24, Text: "I have been in a lot of shouting matches with other people", Factor: "secondary"},
			{Number: 25, Text: "When I get frustrated, I often let off steam by blowing my top", Factor: "secondary"},
			{Number: 26, Text: "Love is overrated", Factor: "secondary"},
		},
	}
}

func bfi() Instrument {
	return Instrument{
		ShortName:    "bfi",
		FullName:     "Big Five Inventory (BFI-44)",
		Scale:        LikertFive,
		Aggregation:  AggregateMean,
		Instructions: bfiInstructions,
		Items: []Item{
			{Number: 1, Text: "Is talkative", Factor: "extraversion"},
			{Number: 6, Text: "Is reserved", Factor: "extraversion", Reversed: true},
			{Number: 11, Text: "Is full of energy", Factor: "extraversion"},
			{Number: 16, Text: "Generates a lot of enthusiasm", Factor: "extraversion"},
			{Number: 21, Text: "Tends to be quiet", Factor: "extraversion", Reversed: true},
			{Number: 26, Text: "Has an assertive personality", Factor: "extraversion"},
			{Number: 31, Text: "Is sometimes shy, inhibited", Factor: "extraversion", Reversed: true},
			{Number: 36, Text: "Is outgoing, sociable", Factor: "extraversion"},
			{Number: 2, Text: "Tends to find fault with others", Factor: "agreeableness", Reversed: true},
			{Number: 7, Text: "Is helpful and unselfish with others", Factor: "agreeableness"},
			{Number: 12, Text: "Starts quarrels with others", Factor: "agreeableness", Reversed: true},
			{Number: 17, Text: "Has a forgiving nature", Factor: "agreeableness"},
			{Number: 22, Text: "Is generally trusting", Factor: "agreeableness"},
			{Number: 27, Text: "Can be cold and aloof", Factor: "agreeableness", Reversed: true},
			{Number: 32, Text: "Is considerate and kind to almost everyone", Factor: "agreeableness"},
			{Number: 37, Text: "Is sometimes rude to others", Factor: "agreeableness", Reversed: true},
			{Number: 42, Text: "Likes to cooperate with others", Factor: "agreeableness"},
			{Number: 3, Text: "Does a thorough job", Factor: "conscientiousness"},
			{Number: 8, Text: "Can be somewhat careless", Factor: "conscientiousness", Reversed: true},
			{Number: 13, Text: "Is a reliable worker", Factor: "conscientiousness"},
			{Number: 18, Text: "Tends to be disorganized", Factor: "conscientiousness", Reversed: true},
			{Number: 23, Text: "Tends to be lazy", Factor: "conscientiousness", Reversed: true},
			{Number: 28, Text: "Perseveres until the task is finished", Factor: "conscientiousness"},
			{Number: 33, Text: "Does things efficiently", Factor: "conscientiousness"},
			{Number: 38, Text: "Makes plans and follows through with them", Factor: "conscientiousness"},
			{Number: 43, Text: "Is easily distracted", Factor: "conscientiousness", Reversed: true},
			{Number: 4, Text: "Is depressed, blue", Factor: "neuroticism"},
			{Number: 9, Text: "Is relaxed, handles stress well", Factor: "neuroticism", Reversed: true},
			{Number: 14, Text: "Can be tense", Factor: "neuroticism"},
			{Number: 19, Text: "Worries a lot", Factor: "neuroticism"},
			{Number: 24, Text: "Is emotionally stable, not easily upset", Factor: "neuroticism", Reversed: true},
			{Number: 29, Text: "Can be moody", Factor: "neuroticism"},
			{Number: 34, Text: "Remains calm in tense situations", Factor: "neuroticism", Reversed: true},
			{Number: 39, Text: "Gets nervous easily", Factor: "neuroticism"},
			{Number: 5, Text: "Is original, comes up with new ideas", Factor: "openness"},
			{Number: 10, Text: "Is curious about many different things", Factor: "openness"},
			{Number: 15, Text: "Is ingenious, a deep thinker", Factor: "openness"},
			{Number: 20, Text: "Has an active imagination", Factor: "openness"},
			{Number: 25, Text: "Is inventive", Factor: "openness"},
			{Number: 30, Text: "Values artistic, aesthetic experiences", Factor: "openness"},
			{Number: 35, Text: "Prefers work that is routine", Factor: "openness", Reversed: true},
			{Number: 40, Text: "Likes to reflect, play with ideas", Factor: "openness"},
			{Number: 41, Text: "Has few artistic interests", Factor: "openness", Reversed: true},
			{Number: 44, Text: "Is sophisticated in art, music, or literature", Factor: "openness"},
		},
	}
}

func darkTriad() Instrument {
	return Instrument{
		ShortName:    "dark_triad",
		FullName:     "Short Dark Triad (SD3)",
		Scale:        LikertFive,
		Aggregation:  AggregateMean,
		Instructions: agreementInstructions,
		Items: []Item{
			{Number: 1, Text: "It's not wise to tell your secrets", Factor: "machiavellianism"},
			{Number: 2, Text: "I like to use clever manipulation to get my way", Factor: "machiavellianism"},
			{Number: 3, Text: "Whatever it takes, you must get the important people on your side", Factor: "machiavellianism"},
			{Number: 4, Text: "Avoid direct conflict with others because they may be useful in the future", Factor: "machiavellianism"},
			{Number: 5, Text: "It's wise to keep track of information that you can use against people later", Factor: "machiavellianism"},
			{Number: 6, Text: "You should wait for the right time to get back at people", Factor: "machiavellianism"},
			{Number: 7, Text: "There are things you should hide from other people to preserve your reputation", Factor: "machiavellianism"},
			{Number: 8, Text: "Make sure your plans benefit yourself, not others", Factor: "machiavellianism"},
			{Number: 9, Text: "Most people can be manipulated", Factor: "machiavellianism"},
			{Number: 10, Text: "People see me as a natural leader", Factor: "narcissism"},
			{Number: 11, Text: "I hate being the center of attention", Factor: "narcissism", Reversed: true},
			{Number: 12, Text: "Many group activities tend to be dull without me", Factor: "narcissism"},
			{Number: 13, Text: "I know that I am special because everyone keeps telling me so", Factor: "narcissism"},
			{Number: 14, Text: "I like to get acquainted with important people", Factor: "narcissism"},
			{Number: 15, Text: "I feel embarrassed if someone compliments me", Factor: "narcissism", Reversed: true},
			{Number: 16, Text: "I have been compared to famous people", Factor: "narcissism"},
			{Number: 17, Text: "I am an average person", Factor: "narcissism", Reversed: true},
			{Number: 18, Text: "I insist on getting the respect I deserve", Factor: "narcissism"},
			{Number: 19, Text: "I like to get revenge on authorities", Factor: "psychopathy"},
			{Number: 20, Text: "I avoid dangerous situations", Factor: "psychopathy", Reversed: true},
			{Number: 21, Text: "Payback needs to be quick and nasty", Factor: "psychopathy"},
			{Number: 22, Text: "People often say I'm out of control", Factor: "psychopathy"},
			{Number: 23, Text: "It's true that I can be mean to others", Factor: "psychopathy"},
			{Number: 24, Text: "People who mess with me always regret it", Factor: "psychopathy"},
			{Number: 25, Text: "I have never gotten into trouble with the law", Factor: "psychopathy", Reversed: true},
			{Number: 26, Text: "I enjoy having sex with people I hardly know", Factor: "psychopathy"},
			{Number: 27, Text: "I'll say anything to get what I want", Factor: "psychopathy"},
		},
	}
}

func phq9() Instrument {
	return Instrument{
		ShortName:    "phq9",
		FullName:     "Patient Health Questionnaire-9 (PHQ-9)",
		Scale:        LikertFive,
		Aggregation:  AggregateSum,
		Instructions: frequencyInstructions,
		Items: []Item{
			{Number: 1, Text: "Little interest or pleasure in doing things", Factor: "depression"},
			{Number: 2, Text: "Feeling down, depressed, or hopeless", Factor: "depression"},
			{Number: 3, Text: "Trouble falling or staying asleep, or sleeping too much", Factor: "depression"},
			{Number: 4, Text: "Feeling tired or having little energy", Factor: "depression"},
			{Number: 5, Text: "Poor appetite or overeating", Factor: "depression"},
			{Number: 6, Text: "Feeling bad about yourself, or that you are a failure, or have let yourself or your family down", Factor: "depression"},
			{Number: 7, Text: "Trouble concentrating on things, such as reading the newspaper or watching television", Factor: "depression"},
			{Number: 8, Text: "Moving or speaking so slowly that other people could have noticed. Or the opposite, being so fidgety or restless that you have been moving around a lot more than usual", Factor: "depression"},
			{Number: 9, Text: "Thoughts that you would be better off dead, or of hurting yourself in some way", Factor: "depression"},
		},
	}
}

func gad7() Instrument {
	return Instrument{
		ShortName:    "gad7",
		FullName:     "Generalized Anxiety Disorder 7-item (GAD-7)",
		Scale:        LikertFive,
		Aggregation:  AggregateSum,
		Instructions: frequencyInstructions,
		Items: []Item{
			{Number: 1, Text: "Feeling nervous, anxious, or on edge", Factor: "anxiety"},
			{Number: 2, Text: "Not being able to stop or control worrying", Factor: "anxiety"},
			{Number: 3, Text: "Worrying too much about different things", Factor: "anxiety"},
			{Number: 4, Text: "Trouble relaxing", Factor: "anxiety"},
			{Number: 5, Text: "Being so restless that it is hard to sit still", Factor: "anxiety"},
			{Number: 6, Text: "Becoming easily annoyed or irritable", Factor: "anxiety"},
			{Number: 7, Text: "Feeling afraid as if something awful might happen", Factor: "anxiety"},
		},
	}
}

func phq6BC() Instrument {
	return Instrument{
		ShortName:    "phq6_bc",
		FullName:     "PHQ-6 Behavioral/Cognitive",
		Scale:        LikertFive,
		Aggregation:  AggregateSum,
		Instructions: frequencyInstructions,
		Items: []Item{
			{Number: 1, Text: "Little interest or pleasure in doing things", Factor: "behavioral"},
			{Number: 2, Text: "Trouble falling or staying asleep, or sleeping too much", Factor: "behavioral"},
			{Number: 3, Text: "Poor appetite or overeating", Factor: "behavioral"},
			{Number: 4, Text: "Trouble concentrating on things, such as reading the newspaper or watching television", Factor: "cognitive"},
			{Number: 5, Text: "Moving or speaking so slowly that other people could have noticed. Or the opposite, being so fidgety or restless that you have been moving around a lot more than usual", Factor: "behavioral"},
			{Number: 6, Text: "Thoughts that you would be better off dead, or of hurting yourself in some way", Factor: "cognitive"},
		},
	}
}

func phq3A() Instrument {
	return Instrument{
		ShortName:    "phq3_a",
		FullName:     "PHQ-3 Affective",
		Scale:        LikertFive,
		Aggregation:  AggregateSum,
		Instructions: frequencyInstructions,
		Items: []Item{
			{Number: 1, Text: "Feeling down, depressed, or hopeless", Factor: "affect"},
			{Number: 2, Text: "Feeling tired or having little energy", Factor: "affect"},
			{Number: 3, Text: "Feeling bad about yourself, or that you are a failure, or have let yourself or your family down", Factor: "affect"},
		},
	}
}
