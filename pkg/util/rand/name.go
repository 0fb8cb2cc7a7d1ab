// Package rand generates human-readable random identifiers.
package rand

import (
	mrand "math/rand"
)

var adjectives = []string{
	"agile", "brave", "calm", "daring", "eager",
	"fancy", "gentle", "happy", "jolly", "keen",
	"kind", "lively", "mighty", "noble", "patient",
	"playful", "quick", "radiant", "spirited", "trusty",
	"upbeat", "vibrant", "wise", "youthful", "zealous",
	"bright", "cheerful", "hardy", "hopeful", "loyal",
	"nimble", "steady", "sturdy", "tenacious", "warm",
}

var plants = []string{
	"basil", "bean", "cabbage", "chard", "chive",
	"cilantro", "clover", "cress", "dill", "fennel",
	"fern", "kale", "lettuce", "mint", "moss",
	"mustard", "oregano", "parsley", "pea", "radish",
	"rosemary", "rocket", "sage", "sorrel", "spinach",
	"sprout", "thyme", "tomato", "watercress", "wheatgrass",
}

// NewName returns an adjective-plant pair like "hardy-basil", safe for
// use in MQTT client ids.
func NewName() string {
	adj := adjectives[mrand.Intn(len(adjectives))]
	plant := plants[mrand.Intn(len(plants))]
	return adj + "-" + plant
}
