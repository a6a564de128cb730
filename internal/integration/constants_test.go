package integration_test

const (
	// User related constants
	TestUserId    = 1
	TestUserName  = "John Doe"
	TestUserEmail = "test@example.com"

	// Screening related constants
	TestScreeningId = 1
	TestMovieTitle  = "The Long Intermission"
	TestTheaterName = "Grand Cinema"
	TestHallName    = "Hall 2"
)
