package catalog

import "slices"

var builtins = map[string][]Character{
	ModeClassic: {
		{ID: 1, Name: "Alice", Image: "/woman-brown-hair.png"},
		{ID: 2, Name: "Bob", Image: "/thoughtful-man-glasses.png"},
		{ID: 3, Name: "Charlie", Image: "/bearded-man-portrait.png"},
		{ID: 4, Name: "Diana", Image: "/blonde-woman-portrait.png"},
		{ID: 5, Name: "Eve", Image: "/red-haired-woman.png"},
		{ID: 6, Name: "Frank", Image: "/bald-man.png"},
		{ID: 7, Name: "Grace", Image: "/curly-haired-woman.png"},
		{ID: 8, Name: "Henry", Image: "/man-with-mustache.jpg"},
		{ID: 9, Name: "Iris", Image: "/woman-black-hair.png"},
		{ID: 10, Name: "Jack", Image: "/young-man-contemplative.png"},
		{ID: 11, Name: "Kate", Image: "/short-haired-woman.png"},
		{ID: 12, Name: "Leo", Image: "/man-with-fedora.png"},
		{ID: 13, Name: "Mia", Image: "/woman-with-freckles.jpg"},
		{ID: 14, Name: "Noah", Image: "/long-haired-man.png"},
		{ID: 15, Name: "Olivia", Image: "/woman-with-pigtails.jpg"},
		{ID: 16, Name: "Paul", Image: "/elderly-man-contemplative.png"},
	},
	ModeAnimals: {
		{ID: 17, Name: "Lion", Image: "/cartoon-lion.png"},
		{ID: 18, Name: "Tiger", Image: "/cartoon-tiger.jpg"},
		{ID: 19, Name: "Bear", Image: "/cartoon-bear.png"},
		{ID: 20, Name: "Elephant", Image: "/cartoon-elephant.png"},
		{ID: 21, Name: "Giraffe", Image: "/cartoon-giraffe.png"},
		{ID: 22, Name: "Zebra", Image: "/cartoon-zebra.png"},
		{ID: 23, Name: "Monkey", Image: "/cartoon-monkey.png"},
		{ID: 24, Name: "Panda", Image: "/cartoon-panda.jpg"},
		{ID: 25, Name: "Koala", Image: "/cartoon-koala.jpg"},
		{ID: 26, Name: "Penguin", Image: "/cartoon-penguin.png"},
		{ID: 27, Name: "Dolphin", Image: "/cartoon-dolphin.png"},
		{ID: 28, Name: "Owl", Image: "/cartoon-owl.png"},
		{ID: 29, Name: "Fox", Image: "/cartoon-fox.png"},
		{ID: 30, Name: "Rabbit", Image: "/cartoon-rabbit.png"},
		{ID: 31, Name: "Deer", Image: "/cartoon-deer.jpg"},
		{ID: 32, Name: "Squirrel", Image: "/cartoon-squirrel.jpg"},
	},
}

// Find returns the character with id, if present in roster.
func Find(roster []Character, id int) (Character, bool) {
	i := slices.IndexFunc(roster, func(c Character) bool { return c.ID == id })
	if i < 0 {
		return Character{}, false
	}
	return roster[i], true
}
