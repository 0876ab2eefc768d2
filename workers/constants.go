package workers

// Worker ids, matched against the WORKER_IDS env list by the server.
const (
	DonationProcessorID = 1
	PriceRefresherID    = 2
	SessionMonitorID    = 3
	MilestoneAlerterID  = 4
)

const (
	DonationProcessorFreq = 10  // in sec
	PriceRefresherFreq    = 60  // in sec
	SessionMonitorFreq    = 120 // in sec
	MilestoneAlerterFreq  = 300 // in sec
)
