package domain

// DecodeBulletin decodes every station in a bulletin. Stations whose header
// coordinates or elevation cannot be read are left out; nothing else drops a record.
func DecodeBulletin(text string) []ObservationRecord {
	records, _ := DecodeBulletinStats(text)
	return records
}

// DecodeBulletinStats is DecodeBulletin plus counters for logging and metrics.
// Output order is header order.
func DecodeBulletinStats(text string) ([]ObservationRecord, DecodeStats) {
	blocks := SegmentBulletin(text)
	stats := DecodeStats{Headers: len(blocks)}
	records := make([]ObservationRecord, 0, len(blocks))

	for _, b := range blocks {
		fields, unparsed := decodeSynop(b.Raw, b.Header.ID)
		rec, err := AssembleRecord(b, fields)
		if err != nil {
			stats.Dropped = append(stats.Dropped, DroppedStation{StationID: b.Header.ID, Reason: err})
			continue
		}
		stats.UnparsedGroups += unparsed
		records = append(records, rec)
	}

	stats.Records = len(records)
	return records, stats
}

// AssembleRecord merges a station block and its decoded fields into a record.
// It fails only when the header could not be read or its coordinates are malformed.
func AssembleRecord(b StationBlock, fields DecodedFields) (ObservationRecord, error) {
	if b.Err != nil {
		return ObservationRecord{}, b.Err
	}
	geom, err := StationGeometry(b.Header)
	if err != nil {
		return ObservationRecord{}, err
	}
	return ObservationRecord{
		StationID:  b.Header.ID,
		Name:       b.Header.Name,
		Country:    b.Header.Country,
		ElevationM: b.Header.ElevationM,
		Geometry:   geom,
		RawReport:  b.Raw,
		Fields:     fields,
	}, nil
}
