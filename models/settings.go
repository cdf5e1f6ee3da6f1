package models

type Category string

const (
	CategoryFood       Category = "FOOD"
	CategoryAnimals    Category = "ANIMALS"
	CategoryMoviesTV   Category = "MOVIES_TV"
	CategorySports     Category = "SPORTS"
	CategoryPlaces     Category = "PLACES"
	CategoryJobs       Category = "JOBS"
	CategoryObjects    Category = "OBJECTS"
	CategoryVehicles   Category = "VEHICLES"
	CategoryHolidays   Category = "HOLIDAYS"
	CategorySchool     Category = "SCHOOL"
	CategorySilly      Category = "SILLY"
	CategoryFantasy    Category = "FANTASY"
	CategoryTechnology Category = "TECHNOLOGY"
	CategoryNature     Category = "NATURE"
	CategoryMusic      Category = "MUSIC"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

const (
	MinClueRounds = 2
	MaxClueRounds = 5
)

type Settings struct {
	Category     Category   `json:"category" validate:"required,category"`
	Difficulty   Difficulty `json:"difficulty" validate:"required,difficulty"`
	ClueRounds   int        `json:"clueRounds" validate:"min=2,max=5"`
	AllowPhrases bool       `json:"allowPhrases"`
}

// SettingsPatch is a partial settings update; nil fields are left untouched.
type SettingsPatch struct {
	Category     *Category   `json:"category,omitempty"`
	Difficulty   *Difficulty `json:"difficulty,omitempty"`
	ClueRounds   *int        `json:"clueRounds,omitempty"`
	AllowPhrases *bool       `json:"allowPhrases,omitempty"`
}

func (s Settings) Merge(p SettingsPatch) Settings {
	if p.Category != nil {
		s.Category = *p.Category
	}
	if p.Difficulty != nil {
		s.Difficulty = *p.Difficulty
	}
	if p.ClueRounds != nil {
		s.ClueRounds = *p.ClueRounds
	}
	if p.AllowPhrases != nil {
		s.AllowPhrases = *p.AllowPhrases
	}
	return s
}

func DefaultSettings() Settings {
	return Settings{
		Category:     CategoryFood,
		Difficulty:   DifficultyMedium,
		ClueRounds:   3,
		AllowPhrases: false,
	}
}

type CategoryInfo struct {
	ID    Category `json:"id"`
	Name  string   `json:"name"`
	Emoji string   `json:"emoji"`
}

// Categories lists every category in display order.
var Categories = []CategoryInfo{
	{CategoryFood, "Food", "🍕"},
	{CategoryAnimals, "Animals", "🦁"},
	{CategoryMoviesTV, "Movies & TV", "🎬"},
	{CategorySports, "Sports & Games", "⚽"},
	{CategoryPlaces, "Places", "🗺️"},
	{CategoryJobs, "Jobs", "👨‍💼"},
	{CategoryObjects, "Objects", "📦"},
	{CategoryVehicles, "Vehicles", "🚗"},
	{CategoryHolidays, "Holidays", "🎉"},
	{CategorySchool, "School", "📚"},
	{CategorySilly, "Silly & Random", "🤪"},
	{CategoryFantasy, "Fantasy", "🐉"},
	{CategoryTechnology, "Technology", "💻"},
	{CategoryNature, "Nature", "🌲"},
	{CategoryMusic, "Music", "🎵"},
}

var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (c Category) Valid() bool {
	for _, info := range Categories {
		if info.ID == c {
			return true
		}
	}
	return false
}

func (d Difficulty) Valid() bool {
	for _, v := range Difficulties {
		if v == d {
			return true
		}
	}
	return false
}
