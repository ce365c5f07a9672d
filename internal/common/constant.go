package common

// DefaultHistoryLimit is the number of sync log entries returned when the
// caller does not ask for a specific amount.
const DefaultHistoryLimit = 10
