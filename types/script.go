package types

// Script is the structured script produced for one topic: a short takeaway
// plus the ordered captions that drive every downstream stage.
type Script struct {
	Topic    string   `json:"topic"`
	Takeaway string   `json:"takeaway"`
	Captions []string `json:"captions"`
}
