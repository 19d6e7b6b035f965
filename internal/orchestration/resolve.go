package orchestration

// Resolve turns parsed items into meal entries.
//
// choices maps an item's index to the candidate name picked for it. Every
// item that needs disambiguation must have a choice naming one of its
// matches. Single matches use their selected food and AI-estimated items keep
// their original name; choices for those items are ignored.
func Resolve(items []ParsedItem, choices map[int]string) ([]MealItem, error) {
	meal := make([]MealItem, 0, len(items))
	for i, item := range items {
		resolved, err := item.Resolved(choices[i])
		if err != nil {
			return nil, err
		}
		meal = append(meal, resolved)
	}
	return meal, nil
}

// FirstChoices picks the first candidate of every ambiguous item.
func FirstChoices(items []ParsedItem) map[int]string {
	choices := make(map[int]string)
	for i, item := range items {
		if item.Status == NeedsDisambiguation && len(item.Matches) > 0 {
			choices[i] = item.Matches[0].Name
		}
	}
	return choices
}
