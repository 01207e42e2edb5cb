package attendance

// Partition folds a day's events into per-student evidence flags. Repeated
// events on the same channel collapse into one flag, so reconciliation is
// insensitive to event count and order.
func Partition(events []MatchEvent) map[int64]Flags {
	flags := make(map[int64]Flags)
	for _, ev := range events {
		f := flags[ev.StudentID]
		switch ev.Method {
		case MethodSelfie:
			f.Selfie = true
		case MethodClassPhoto:
			f.Photo = true
		case MethodManual:
			f.Manual = true
		}
		flags[ev.StudentID] = f
	}
	return flags
}

// Reconcile derives the displayed status, method, and alert from one
// student's evidence flags. Any evidence means Present; absence is only ever
// the absence of evidence. The cross-validation rules are mutually exclusive
// per student:
//
//   - selfie without photo: Present via Selfie, flagged SUSPECT because the
//     class photo should have corroborated it
//   - photo without selfie: Present, method forced to ClassPhoto, flagged as
//     lacking the selfie check
//   - selfie and photo: the channels corroborate, no alert
//   - manual only: Present via Manual, no alert
func Reconcile(f Flags) Record {
	rec := Record{
		Status: StatusAbsent,
		Method: NoMethod,
		Color:  ColorAbsent,
	}

	if f.Selfie || f.Photo || f.Manual {
		rec.Status = StatusPresent
		rec.Color = ColorPresent
		rec.IsPresent = true
		// Display method follows channel strength: Selfie > ClassPhoto > Manual.
		switch {
		case f.Selfie:
			rec.Method = string(MethodSelfie)
		case f.Photo:
			rec.Method = string(MethodClassPhoto)
		default:
			rec.Method = string(MethodManual)
		}
	}

	switch {
	case f.Selfie && !f.Photo:
		rec.Alert = AlertSuspect
	case f.Photo && !f.Selfie:
		rec.Method = string(MethodClassPhoto)
		rec.Alert = AlertPhotoOnly
	}

	return rec
}

// BuildView reconciles a whole class for one date, in roster order. Students
// without events appear as Absent rows.
func BuildView(roster []RosterEntry, events []MatchEvent) []Record {
	flags := Partition(events)

	records := make([]Record, 0, len(roster))
	for _, s := range roster {
		rec := Reconcile(flags[s.StudentID])
		rec.Roll = s.Roll
		rec.Name = s.Name
		records = append(records, rec)
	}
	return records
}
