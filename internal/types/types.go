package types

type Action string

const (
	ActionAllow Action = "allow"
	ActionWarn  Action = "warn"
	ActionBlock Action = "block"
)

type Granularity string

const (
	GranularityDay   Granularity = "day"   // YYYY-MM-DD
	GranularityMonth Granularity = "month" // YYYY-MM
	GranularityHour  Granularity = "hour"  // YYYY-MM-DD-HH
)

type TimezoneMode string

const (
	TimezoneAuto   TimezoneMode = "auto"   // process local zone
	TimezoneRegion TimezoneMode = "region" // IANA name, e.g. Asia/Tokyo
	TimezoneManual TimezoneMode = "manual" // fixed offset, e.g. +09:00
)

type ImportMode string

const (
	ImportMerge   ImportMode = "merge"
	ImportReplace ImportMode = "replace"
)

type ScoreLevel string

const (
	ScoreLevelOK      ScoreLevel = "ok"
	ScoreLevelWarning ScoreLevel = "warning"
	ScoreLevelBlock   ScoreLevel = "block"
)
