package services

import (
	"fmt"
	"math/rand"

	"imposter/models"
)

type WordBank interface {
	RandomWord(category models.Category, difficulty models.Difficulty) (string, error)
}

// StaticWordBank draws uniformly from the built-in word lists. Repeats across
// games are allowed.
type StaticWordBank struct {
	words map[models.Category]map[models.Difficulty][]string
	intN  func(n int) int
}

func NewWordBank() *StaticWordBank {
	return &StaticWordBank{words: wordLists, intN: rand.Intn}
}

func (b *StaticWordBank) RandomWord(category models.Category, difficulty models.Difficulty) (string, error) {
	words := b.Words(category, difficulty)
	if len(words) == 0 {
		return "", fmt.Errorf("no words for %s/%s", category, difficulty)
	}
	return words[b.intN(len(words))], nil
}

func (b *StaticWordBank) Words(category models.Category, difficulty models.Difficulty) []string {
	return b.words[category][difficulty]
}

var wordLists = map[models.Category]map[models.Difficulty][]string{
	models.CategoryFood: {
		models.DifficultyEasy:   {"Pizza", "Apple", "Bread", "Cake", "Ice Cream", "Banana", "Sandwich", "Milk", "Cookie", "Cheese"},
		models.DifficultyMedium: {"Spaghetti", "Hamburger", "Popcorn", "Salad", "Muffin", "Taco", "Yogurt", "Cereal", "Peanut Butter", "Chicken"},
		models.DifficultyHard:   {"Croissant", "Quiche", "Sushi", "Ravioli", "Guacamole", "Eggplant", "Avocado", "Falafel", "Pomegranate", "Wasabi"},
	},
	models.CategoryAnimals: {
		models.DifficultyEasy:   {"Dog", "Cat", "Cow", "Fish", "Horse", "Duck", "Bird", "Pig", "Rabbit", "Lion"},
		models.DifficultyMedium: {"Elephant", "Giraffe", "Kangaroo", "Panda", "Penguin", "Zebra", "Bear", "Monkey", "Snake", "Dolphin"},
		models.DifficultyHard:   {"Armadillo", "Platypus", "Narwhal", "Chameleon", "Wombat", "Axolotl", "Sloth", "Tarantula", "Iguana", "Hedgehog"},
	},
	models.CategoryMoviesTV: {
		models.DifficultyEasy:   {"Frozen", "Toy Story", "Spider-Man", "Minions", "Batman", "Cars", "Moana", "Shrek", "Harry Potter", "Star Wars"},
		models.DifficultyMedium: {"Jurassic Park", "Finding Nemo", "Black Panther", "Aladdin", "Lion King", "Home Alone", "E.T.", "Cinderella", "Encanto", "Up"},
		models.DifficultyHard:   {"Inception", "Casablanca", "The Godfather", "Parasite", "Interstellar", "Amélie", "Jaws", "Titanic", "La La Land", "Gladiator"},
	},
	models.CategorySports: {
		models.DifficultyEasy:   {"Soccer", "Basketball", "Baseball", "Football", "Tennis", "Hockey", "Golf", "Swimming", "Running", "Volleyball"},
		models.DifficultyMedium: {"Badminton", "Bowling", "Rugby", "Skateboarding", "Surfing", "Lacrosse", "Karate", "Gymnastics", "Archery", "Dodgeball"},
		models.DifficultyHard:   {"Polo", "Curling", "Fencing", "Equestrian", "Biathlon", "Triathlon", "Javelin", "Bocce", "Squash", "Cricket"},
	},
	models.CategoryPlaces: {
		models.DifficultyEasy:   {"School", "Park", "Beach", "Home", "Zoo", "Farm", "Playground", "Mall", "Hospital", "Library"},
		models.DifficultyMedium: {"City Hall", "Stadium", "Airport", "Theater", "Aquarium", "Museum", "Restaurant", "Castle", "Mountain", "Bridge"},
		models.DifficultyHard:   {"Pyramids", "Eiffel Tower", "Great Wall", "Taj Mahal", "Colosseum", "Machu Picchu", "Stonehenge", "Sydney Opera House", "Statue of Liberty", "Mount Everest"},
	},
	models.CategoryJobs: {
		models.DifficultyEasy:   {"Teacher", "Doctor", "Chef", "Farmer", "Nurse", "Firefighter", "Police Officer", "Singer", "Athlete", "Pilot"},
		models.DifficultyMedium: {"Librarian", "Engineer", "Lawyer", "Dancer", "Mechanic", "Scientist", "Actor", "Author", "Soldier", "Baker"},
		models.DifficultyHard:   {"Archaeologist", "Astronomer", "Mathematician", "Fashion Designer", "Diplomat", "Geologist", "Biologist", "Sculptor", "Politician", "Architect"},
	},
	models.CategoryObjects: {
		models.DifficultyEasy:   {"Ball", "Chair", "Book", "Phone", "Bed", "Table", "Shoes", "Hat", "Pen", "Clock"},
		models.DifficultyMedium: {"Backpack", "Camera", "Guitar", "Bicycle", "Umbrella", "Mirror", "Radio", "Blanket", "Suitcase", "Microwave"},
		models.DifficultyHard:   {"Telescope", "Typewriter", "Microscope", "Projector", "Compass", "Thermometer", "Accordion", "Saxophone", "Sewing Machine", "Drone"},
	},
	models.CategoryVehicles: {
		models.DifficultyEasy:   {"Car", "Bus", "Bike", "Boat", "Truck", "Train", "Plane", "Taxi", "Van", "Scooter"},
		models.DifficultyMedium: {"Helicopter", "Motorcycle", "Sailboat", "Tractor", "Submarine", "Jeep", "Limousine", "Hot Air Balloon", "Skateboard", "Rocket"},
		models.DifficultyHard:   {"Segway", "Monorail", "Rickshaw", "Gondola", "Hovercraft", "Cable Car", "Zeppelin", "Tuk Tuk", "Snowmobile", "Amphibious Vehicle"},
	},
	models.CategoryHolidays: {
		models.DifficultyEasy:   {"Birthday", "Christmas", "Halloween", "Easter", "New Year", "Thanksgiving", "Wedding", "Graduation", "Valentine's Day", "Party"},
		models.DifficultyMedium: {"Fireworks", "Parade", "Pumpkin", "Santa Claus", "Hanukkah", "Costume", "Cake", "Gift", "Balloon", "Turkey"},
		models.DifficultyHard:   {"Piñata", "Diwali", "Ramadan", "Kwanzaa", "Lantern Festival", "Oktoberfest", "Mardi Gras", "Passover", "Holi", "Cinco de Mayo"},
	},
	models.CategorySchool: {
		models.DifficultyEasy:   {"Teacher", "Desk", "Book", "Pencil", "Eraser", "Notebook", "Ruler", "Backpack", "Lunch", "Bus"},
		models.DifficultyMedium: {"Calculator", "Globe", "Blackboard", "Test", "Science", "History", "Dictionary", "Marker", "Recess", "Homework"},
		models.DifficultyHard:   {"Microscope", "Thesis", "Graduation", "Laboratory", "Debate", "Scholarship", "Periodic Table", "Geometry", "Physics", "Biology"},
	},
	models.CategorySilly: {
		models.DifficultyEasy:   {"Banana Peel", "Unicorn", "Slime", "Chicken Nugget", "Bubble", "Robot", "Pickle", "Mustache", "Toilet", "Clown"},
		models.DifficultyMedium: {"Rubber Chicken", "Disco Ball", "Llama", "Kazoo", "Waffle", "Flamingo", "Donut", "Pirate", "Dinosaur Costume", "Taco Truck"},
		models.DifficultyHard:   {"Whoopee Cushion", "Platypus", "Loch Ness Monster", "Yeti", "Marshmallow Cannon", "Giant Rubber Duck", "Sasquatch", "Narwhal", "UFO", "Time Machine"},
	},
	models.CategoryFantasy: {
		models.DifficultyEasy:   {"Dragon", "Fairy", "Wizard", "Giant", "Mermaid", "Troll", "Elf", "Unicorn", "Witch", "Knight"},
		models.DifficultyMedium: {"Griffin", "Phoenix", "Centaur", "Minotaur", "Pegasus", "Cyclops", "Goblin", "Genie", "Werewolf", "Vampire"},
		models.DifficultyHard:   {"Chimera", "Kraken", "Basilisk", "Hydra", "Leviathan", "Banshee", "Sphinx", "Thunderbird", "Golem", "Djinn"},
	},
	models.CategoryTechnology: {
		models.DifficultyEasy:   {"Phone", "Laptop", "TV", "Headphones", "Camera", "Tablet", "Mouse", "Keyboard", "Watch", "Remote"},
		models.DifficultyMedium: {"Drone", "Printer", "Microphone", "Projector", "Smartwatch", "Video Game", "Calculator", "Telescope", "Robot", "Flashlight"},
		models.DifficultyHard:   {"3D Printer", "Virtual Reality", "Quantum Computer", "Satellite", "Supercomputer", "Nanobot", "Hoverboard", "AI Assistant", "Cryptominer", "Hologram"},
	},
	models.CategoryNature: {
		models.DifficultyEasy:   {"Tree", "Rock", "River", "Sun", "Moon", "Flower", "Grass", "Mountain", "Cloud", "Leaf"},
		models.DifficultyMedium: {"Volcano", "Glacier", "Canyon", "Desert", "Jungle", "Waterfall", "Ocean", "Storm", "Rainbow", "Cave"},
		models.DifficultyHard:   {"Aurora Borealis", "Tsunami", "Earthquake", "Meteor", "Eclipse", "Black Hole", "Sandstorm", "Tornado", "Coral Reef", "Fossil"},
	},
	models.CategoryMusic: {
		models.DifficultyEasy:   {"Guitar", "Piano", "Song", "Dance", "Singer", "Drum", "Radio", "Movie", "Game", "Stage"},
		models.DifficultyMedium: {"Violin", "Trumpet", "DJ", "Orchestra", "Actor", "Musical", "Karaoke", "Popcorn", "Audience", "Costume"},
		models.DifficultyHard:   {"Didgeridoo", "Harpsichord", "Theremin", "Sitar", "Bagpipes", "Sousaphone", "Ballet", "Opera", "Mime", "Shakespeare"},
	},}
