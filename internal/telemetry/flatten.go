package telemetry

// Flatten expands a document into one field per leaf, in document order.
// A group yields one field per member and none for the group itself.
func Flatten(doc Document) []Field {
	fields := make([]Field, 0, len(doc))

	for _, entry := range doc {
		base := SeriesName(entry.Key)

		if !entry.IsGroup() {
			fields = append(fields, Field{Name: base, Raw: entry.Key, Value: entry.Value})
			continue
		}

		for _, member := range entry.Group {
			fields = append(fields, Field{
				Name:  MemberName(base, member.Key),
				Raw:   entry.Key + "/" + member.Key,
				Value: member.Value,
			})
		}
	}

	return fields
}
