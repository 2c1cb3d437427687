// Package history provides the entries shown on the chat history screen.
// Conversations are not persisted; the list is fixed.
package history

// Item is one past conversation.
type Item struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	LastMessage string `json:"last_message"`
	Time        string `json:"time"`
}

var items = []Item{
	{ID: 1, Title: "Chat with AI – Feb 24, 2026", LastMessage: "Sure, I can help!", Time: "10:32 AM"},
	{ID: 2, Title: "Chat with Support – Feb 22, 2026", LastMessage: "Thank you for confirming!", Time: "08:10 PM"},
	{ID: 3, Title: "Chat with Bot – Feb 20, 2026", LastMessage: "Let's explore that.", Time: "02:41 PM"},
}

// Items returns the history entries, most recent first.
func Items() []Item {
	return append([]Item(nil), items...)
}

// Find returns the entry with the given id.
func Find(id int) (Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
