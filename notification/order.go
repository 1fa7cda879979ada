package notification

// Order returns the notifications in animation order
// Server insertion order is kept, with one correction: a TARGET_CHOICE that references a
// CARD_PLAYED placed after it pulls that notification to just before itself
// Pure reordering: the result always holds exactly the input notifications
func Order(notes []Notification) []Notification {
	out := make([]Notification, len(notes))
	copy(out, notes)

	index := buildIndex(out)
	resolved := make(map[string]struct{})

	for i := 0; i < len(out); i++ {
		choice, ok := out[i].Payload.(*TargetChoicePayload)
		if !ok || choice.ReferenceID == "" || out[i].Type != TypeTargetChoice {
			continue
		}
		if _, done := resolved[out[i].ID]; done {
			continue
		}
		resolved[out[i].ID] = struct{}{}

		ref, found := index[choice.ReferenceID]
		if !found || ref <= i || out[ref].Type != TypeCardPlayed {
			continue
		}

		moved := out[ref]
		copy(out[i+1:ref+1], out[i:ref])
		out[i] = moved
		index = buildIndex(out)

		// Choice now sits at i+1, resume scanning after it
		i++
	}

	return out
}

func buildIndex(notes []Notification) map[string]int {
	index := make(map[string]int, len(notes))
	for i, n := range notes {
		if _, exists := index[n.ID]; !exists {
			index[n.ID] = i
		}
	}
	return index
}
