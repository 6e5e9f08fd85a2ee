package slots

// Merge folds one turn's extraction and interpretation into the session
// schema. Extraction silence preserves memory: an empty field in extracted
// never clears a value already accumulated. Annotations are weaker still,
// they only fill fields that are empty after the extraction merge (with one
// exception for the generic placeholder title).
func Merge(prior Schema, extracted SlotSet, ann Annotations) Schema {
	out := prior

	// An established scheduling intent is sticky: a later "unknown"
	// classification never regresses it.
	if extracted.Intent != "" {
		if extracted.Intent != IntentUnknown || prior.Intent != IntentSchedule {
			out.Intent = extracted.Intent
		}
	}

	if extracted.Date != "" {
		out.Date = extracted.Date
	}
	if extracted.Time != "" {
		out.Time = extracted.Time
	}
	if extracted.Duration != "" {
		out.Duration = extracted.Duration
	}
	if extracted.EventTitle != "" {
		out.EventTitle = extracted.EventTitle
	}
	if extracted.Offset != "" {
		out.Offset = extracted.Offset
	}
	if extracted.UserConfirmation != nil {
		out.UserConfirmation = *extracted.UserConfirmation
	}

	out.RelativeReference = mergeReference(prior.RelativeReference, extracted.RelativeReference)

	out = applyAnnotations(out, extracted, ann)

	// A reference anchor doubles as the event title when nothing better
	// was ever extracted.
	if out.EventTitle == "" && out.RelativeReference != nil {
		out.EventTitle = out.RelativeReference.EventTitle
	}

	// Sufficiency implies intent, re-checked after every merge rather than
	// only at extraction time.
	if out.SufficientDetail() {
		out.Intent = IntentSchedule
	}

	return out
}

// mergeReference merges the nested reference object key by key when both
// sides are present; otherwise the new side replaces the old wholesale.
func mergeReference(prior, next *RelativeReference) *RelativeReference {
	if next == nil {
		return prior
	}
	if prior == nil {
		cp := *next
		return &cp
	}

	merged := *prior
	if next.EventTitle != "" {
		merged.EventTitle = next.EventTitle
	}
	if next.Offset != "" {
		merged.Offset = next.Offset
	}

	return &merged
}

func applyAnnotations(out Schema, extracted SlotSet, ann Annotations) Schema {
	if ann.Slots.Date != "" && out.Date == "" {
		out.Date = ann.Slots.Date
	}
	if ann.Slots.Time != "" && out.Time == "" {
		out.Time = ann.Slots.Time
	}
	if ann.Slots.Duration != "" && out.Duration == "" {
		out.Duration = ann.Slots.Duration
	}
	if ann.Slots.EventTitle != "" && (out.EventTitle == "" || out.EventTitle == PlaceholderTitle) {
		out.EventTitle = ann.Slots.EventTitle
	}
	if ann.TimeConstraint != "" && out.TimeConstraint == "" {
		out.TimeConstraint = ann.TimeConstraint
	}

	// Confirmation from the extractor always wins; the interpreter's view
	// counts only on turns where extraction had no opinion at all.
	if ann.Slots.UserConfirmation != nil && extracted.UserConfirmation == nil {
		out.UserConfirmation = *ann.Slots.UserConfirmation
	}

	if !ann.isZero() {
		out.Brain = ann.Commentary
	}

	return out
}
