package domain

import "strings"

// Person is a moderator or guest extracted for a broadcast.
// Identity is the trimmed display name; Functions holds free-text
// role/title fragments (e.g. "Politologe", "Moderatorin").
type Person struct {
	Name         string   `json:"name" bson:"name"`
	Functions    []string `json:"functions" bson:"functions"`
	WikipediaURL string   `json:"wikipediaUrl,omitempty" bson:"wikipediaUrl,omitempty"`
}

// Normalize splits a raw extraction name of the form "Name, role1, role2"
// on the first comma: the prefix becomes the name, the remaining
// comma-separated parts become the functions, each trimmed.
// Functions is never nil afterwards.
func (p *Person) Normalize() {
	if p.Functions == nil {
		p.Functions = []string{}
	}
	if strings.Contains(p.Name, ",") {
		parts := strings.Split(p.Name, ",")
		p.Name = parts[0]
		p.Functions = parts[1:]
	}
	p.Name = strings.TrimSpace(p.Name)
	for i, function := range p.Functions {
		p.Functions[i] = strings.TrimSpace(function)
	}
}

// Broadcast is a single episode, identified by its stable URL across
// crawl runs.
type Broadcast struct {
	URL         string   `json:"url" bson:"url"`
	Date        string   `json:"date" bson:"date"` // ISO 8601 where the source provides one; may be empty
	Title       string   `json:"title" bson:"title"`
	Description string   `json:"description" bson:"description"`
	Moderators  []Person `json:"moderators" bson:"moderators"`
	Guests      []Person `json:"guests" bson:"guests"`
	MediaURL    string   `json:"mediaUrl,omitempty" bson:"mediaUrl,omitempty"`
	MediaType   string   `json:"mediaType,omitempty" bson:"mediaType,omitempty"`
}

// Enriched reports whether the broadcast already carries extracted persons.
// Enriched broadcasts are never sent to the extractor again.
func (b *Broadcast) Enriched() bool {
	return len(b.Moderators)+len(b.Guests) > 0
}

// Persons returns moderators and guests as one list.
func (b *Broadcast) Persons() []Person {
	persons := make([]Person, 0, len(b.Moderators)+len(b.Guests))
	persons = append(persons, b.Moderators...)
	persons = append(persons, b.Guests...)
	return persons
}

// Show is a recurring program owned by exactly one source configuration
// entry. Broadcasts is the union of every broadcast ever observed for the
// source, deduplicated by broadcast URL, newest first.
type Show struct {
	URL         string      `json:"url" bson:"url"`
	Author      string      `json:"author" bson:"author"`
	Title       string      `json:"title" bson:"title"`
	Description string      `json:"description" bson:"description"`
	ImageURL    string      `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Broadcasts  []Broadcast `json:"broadcasts" bson:"broadcasts"`
}

// Unenriched returns the broadcasts that still lack persons.
func (s *Show) Unenriched() []*Broadcast {
	var result []*Broadcast
	for i := range s.Broadcasts {
		if !s.Broadcasts[i].Enriched() {
			result = append(result, &s.Broadcasts[i])
		}
	}
	return result
}
