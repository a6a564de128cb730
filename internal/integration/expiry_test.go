package integration_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const shortHoldTTL = 2 * time.Second

// ExpiryTestSuite runs against an app with a hold TTL short enough for holds
// to lapse for real, so reclaim behavior is exercised on the live store
// instead of stubs.
type ExpiryTestSuite struct {
	BaseSuite
}

func (s *ExpiryTestSuite) SetupSuite() {
	s.holdTTL = shortHoldTTL
	s.BaseSuite.SetupSuite()
}

func TestExpirySuite(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	suite.Run(t, new(ExpiryTestSuite))
}

func (s *ExpiryTestSuite) TestSweepReclaimsOnlyLapsedHolds() {
	t := s.T()
	resetState(t, s.app)

	// One hold is left to lapse, a second one is taken just before the sweep
	// and must survive it.
	res := s.doRequest("POST", "/screenings/1/holds", `{"seatIdList": [1]}`, nil)
	s.Require().Equal(http.StatusCreated, res.StatusCode)
	res.Body.Close()

	time.Sleep(shortHoldTTL + 500*time.Millisecond)

	res = s.doRequest("POST", "/screenings/1/holds", `{"seatIdList": [2]}`, nil)
	s.Require().Equal(http.StatusCreated, res.StatusCode)
	res.Body.Close()

	valid, reclaimed, err := s.app.Holds.PruneScreening(context.Background(), TestScreeningId)
	s.Require().NoError(err)
	s.Equal([]int{2}, valid)
	s.Equal([]int{1}, reclaimed)

	codes := s.seatCodes(t)
	s.Equal("available", codes[1])
	s.Equal("held", codes[2])

	// The reclaimed seat is free for the next taker.
	res = s.doRequest("POST", "/screenings/1/holds", `{"seatIdList": [1]}`, nil)
	s.Equal(http.StatusCreated, res.StatusCode)
	res.Body.Close()
}

func (s *ExpiryTestSuite) TestConcurrentHoldCreationSingleWinner() {
	t := s.T()
	resetState(t, s.app)

	const attempts = 8

	statuses := make(chan int, attempts)
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req, err := prepareRequest("POST", "/screenings/1/holds", strings.NewReader(`{"seatIdList": [4]}`), nil, nil)
			if err != nil {
				statuses <- 0
				return
			}

			rec := httptest.NewRecorder()
			s.app.App.Routes().ServeHTTP(rec, req)
			statuses <- rec.Code
		}()
	}

	wg.Wait()
	close(statuses)

	created, conflicted := 0, 0
	for code := range statuses {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicted++
		}
	}

	s.Equal(1, created, "exactly one concurrent hold may win a seat")
	s.Equal(attempts-1, conflicted)

	codes := s.seatCodes(t)
	s.Equal("held", codes[4])
}
