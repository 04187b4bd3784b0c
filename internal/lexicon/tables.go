package lexicon

// build assembles the default tables. Called once from the package-level
// variable initialiser.
func build() *Lexicon {
	profiles := []Profile{
		{
			Emotion:     Happy,
			Genres:      []string{"upbeat pop", "dance", "happy indie", "summer hits", "feel-good", "celebration", "energetic"},
			MusicPrompt: "I can sense your positive energy! Let me find some uplifting music to amplify your happiness.",
			Synonyms:    []string{"joyful", "excited", "cheerful", "elated", "content", "euphoric", "delighted", "thrilled"},
			Tiers: map[Tier][]string{
				Low:    {"chill pop", "acoustic happy", "light indie"},
				Medium: {"upbeat pop", "feel-good hits", "positive vibes"},
				High:   {"dance", "party", "celebration", "high energy"},
			},
		},
		{
			Emotion:     Sad,
			Genres:      []string{"melancholy", "emotional ballads", "indie sad", "healing music", "contemplative", "soft acoustic"},
			MusicPrompt: "I understand you're going through a tough time. Music can be healing - let me find something that resonates with your feelings.",
			Synonyms:    []string{"depressed", "gloomy", "heartbroken", "tearful", "blue", "melancholic", "sorrowful", "down"},
			Tiers: map[Tier][]string{
				Low:    {"soft acoustic", "gentle ballads", "healing music"},
				Medium: {"melancholy indie", "emotional", "contemplative"},
				High:   {"deep sadness", "heartbreak", "cathartic"},
			},
		},
		{
			Emotion:     Angry,
			Genres:      []string{"rock", "alternative rock", "punk", "metal", "aggressive", "intense", "powerful"},
			MusicPrompt: "I can feel your frustration. Sometimes powerful music helps channel those intense emotions.",
			Synonyms:    []string{"furious", "irritated", "enraged", "mad", "annoyed", "frustrated", "livid", "outraged"},
			Tiers: map[Tier][]string{
				Low:    {"alternative rock", "indie rock", "edgy pop"},
				Medium: {"rock", "punk", "aggressive"},
				High:   {"metal", "hardcore", "intense"},
			},
		},
		{
			Emotion:     Anxious,
			Genres:      []string{"ambient", "calming", "meditation", "peaceful", "relaxing", "soothing", "nature sounds"},
			MusicPrompt: "I notice you seem anxious. Let me find some calming music to help ease your mind.",
			Synonyms:    []string{"worried", "nervous", "stressed", "tense", "uneasy", "restless", "overwhelmed", "panicked"},
			Tiers: map[Tier][]string{
				Low:    {"soft ambient", "gentle instrumental", "peaceful"},
				Medium: {"meditation", "calming", "relaxing"},
				High:   {"deep relaxation", "anxiety relief", "therapeutic"},
			},
		},
		{
			Emotion:     Excited,
			Genres:      []string{"energetic", "electronic", "upbeat", "dance-pop", "motivational", "pump-up"},
			MusicPrompt: "Your excitement is contagious! Let me find some high-energy tracks to match your vibe.",
			Synonyms:    []string{"thrilled", "pumped", "energized", "hyped", "enthusiastic", "exhilarated", "animated"},
			Tiers: map[Tier][]string{
				Low:    {"upbeat pop", "energetic indie", "positive"},
				Medium: {"dance-pop", "electronic", "motivational"},
				High:   {"high energy", "pump-up", "intense electronic"},
			},
		},
		{
			Emotion:     Romantic,
			Genres:      []string{"romantic", "love songs", "smooth", "sensual", "intimate", "soft rock"},
			MusicPrompt: "I sense romance in the air! Let me find some beautiful love songs for you.",
			Synonyms:    []string{"loving", "affectionate", "passionate", "tender", "intimate", "sentimental"},
			Tiers: map[Tier][]string{
				Low:    {"soft romantic", "gentle love songs", "tender"},
				Medium: {"romantic hits", "love ballads", "smooth"},
				High:   {"passionate", "intense love", "sensual"},
			},
		},
		{
			Emotion:     Nostalgic,
			Genres:      []string{"nostalgic", "retro", "classic hits", "throwback", "vintage", "memories"},
			MusicPrompt: "I can tell you're feeling nostalgic. Let me find some music that captures those precious memories.",
			Synonyms:    []string{"reminiscent", "wistful", "sentimental", "longing", "reflective"},
			Tiers: map[Tier][]string{
				Low:    {"soft nostalgic", "gentle memories", "reflective"},
				Medium: {"classic hits", "retro", "throwback"},
				High:   {"deep nostalgia", "emotional memories", "vintage"},
			},
		},
		{
			Emotion:     Motivated,
			Genres:      []string{"motivational", "workout", "pump-up", "inspiring", "powerful", "energizing"},
			MusicPrompt: "I can feel your determination! Let me find some motivational tracks to fuel your drive.",
			Synonyms:    []string{"determined", "driven", "focused", "ambitious", "inspired", "pumped up"},
			Tiers: map[Tier][]string{
				Low:    {"inspiring", "uplifting", "positive motivation"},
				Medium: {"motivational", "energizing", "pump-up"},
				High:   {"intense motivation", "workout", "powerful"},
			},
		},
		{
			Emotion:     Peaceful,
			Genres:      []string{"peaceful", "serene", "tranquil", "zen", "nature", "meditation"},
			MusicPrompt: "You seem to be in a peaceful state. Let me find some serene music to complement your tranquility.",
			Synonyms:    []string{"calm", "serene", "tranquil", "zen", "relaxed", "centered"},
			Tiers: map[Tier][]string{
				Low:    {"gentle peaceful", "soft tranquil", "light ambient"},
				Medium: {"peaceful", "serene", "zen"},
				High:   {"deep meditation", "profound peace", "spiritual"},
			},
		},
		{
			Emotion:     Neutral,
			Genres:      []string{"chill", "lo-fi", "easy listening", "background", "ambient pop", "indie chill"},
			MusicPrompt: "You seem balanced right now. Let me find some pleasant music to accompany your mood.",
			Synonyms:    []string{"balanced", "indifferent", "unaffected", "composed", "steady"},
			Tiers: map[Tier][]string{
				Low:    {"soft background", "gentle ambient", "light"},
				Medium: {"chill", "lo-fi", "easy listening"},
				High:   {"deep chill", "atmospheric", "immersive"},
			},
		},
	}

	l := &Lexicon{profiles: make(map[Emotion]Profile, len(profiles))}
	for _, p := range profiles {
		p.ConfirmPrompt = confirmPrompt(p.Emotion)
		l.profiles[p.Emotion] = p
	}

	l.genres = []GenreKeywords{
		{Genre: "rock", Keywords: []string{"rock", "metal", "punk", "hardcore", "alternative rock"}},
		{Genre: "pop", Keywords: []string{"pop", "mainstream", "chart", "radio hits"}},
		{Genre: "jazz", Keywords: []string{"jazz", "blues", "swing", "bebop"}},
		{Genre: "classical", Keywords: []string{"classical", "orchestra", "symphony", "piano"}},
		{Genre: "electronic", Keywords: []string{"electronic", "edm", "techno", "house", "dubstep"}},
		{Genre: "hiphop", Keywords: []string{"hip hop", "rap", "trap", "r&b"}},
		{Genre: "country", Keywords: []string{"country", "folk", "bluegrass", "americana"}},
		{Genre: "indie", Keywords: []string{"indie", "independent", "alternative", "underground"}},
		{Genre: "reggae", Keywords: []string{"reggae", "ska", "dub"}},
		{Genre: "latin", Keywords: []string{"latin", "salsa", "bachata", "reggaeton"}},
		{Genre: "ambient", Keywords: []string{"ambient", "atmospheric", "soundscape", "drone"}},
		{Genre: "workout", Keywords: []string{"workout", "gym", "fitness", "exercise", "training"}},
		{Genre: "study", Keywords: []string{"study", "focus", "concentration", "lo-fi"}},
		{Genre: "sleep", Keywords: []string{"sleep", "bedtime", "lullaby", "peaceful night"}},
		{Genre: "party", Keywords: []string{"party", "dance", "club", "celebration"}},
		{Genre: "chill", Keywords: []string{"chill", "relaxing", "calm", "mellow"}},
	}

	l.scenarios = []ScenarioRule{
		{
			Name:      "breakup",
			Keywords:  []string{"breakup", "broke up", "dumped", "heartbreak", "relationship ended", "split up", "ex-boyfriend", "ex-girlfriend"},
			Emotion:   Sad,
			Intensity: High,
			Response:  "Going through a breakup is never easy. Music can help you process these emotions and heal.",
			Genres:    []string{"breakup songs", "healing", "emotional recovery", "moving on", "heartbreak ballads"},
		},
		{
			Name:      "work_stress",
			Keywords:  []string{"work", "job", "boss", "deadline", "meeting", "project", "office", "stressed at work"},
			Emotion:   Anxious,
			Intensity: Medium,
			Response:  "Work stress can be overwhelming. Let me find some music to help you decompress.",
			Genres:    []string{"stress relief", "calming", "focus music", "relaxing"},
		},
		{
			Name:      "celebration",
			Keywords:  []string{"celebration", "celebrate", "party", "achievement", "success", "graduated", "promotion", "birthday"},
			Emotion:   Happy,
			Intensity: High,
			Response:  "Congratulations! This calls for some celebratory music!",
			Genres:    []string{"celebration", "party", "victory", "achievement", "upbeat"},
		},
		{
			Name:      "workout",
			Keywords:  []string{"workout", "exercise", "gym", "running", "training", "fitness"},
			Emotion:   Motivated,
			Intensity: High,
			Response:  "Time to get pumped! Let me find some high-energy workout music.",
			Genres:    []string{"workout", "fitness", "pump-up", "high energy", "motivation"},
		},
		{
			Name:      "late_night",
			Keywords:  []string{"late night", "midnight", "can't sleep", "insomnia", "night time"},
			Emotion:   Peaceful,
			Intensity: Low,
			Response:  "Late night vibes call for something special. Let me find some perfect nighttime music.",
			Genres:    []string{"late night", "midnight", "chill night", "peaceful night"},
		},
		{
			Name:      "morning",
			Keywords:  []string{"morning", "wake up", "start day", "coffee", "sunrise"},
			Emotion:   Motivated,
			Intensity: Medium,
			Response:  "Starting your day right! Let me find some energizing morning music.",
			Genres:    []string{"morning", "wake up", "energizing", "start day", "positive morning"},
		},
	}

	return l
}
