package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ozanyurt/cinebook/internal/domain"
	"github.com/redis/go-redis/v9"
)

// recordGraceWindow keeps the hold record readable for a while after the seat
// locks have lapsed, so the confirmation path can tell an expired hold apart
// from an unknown one.
const recordGraceWindow = time.Minute

// acquireSeatsScript is the all-or-nothing seat acquisition primitive. It
// either locks every requested seat for the hold and indexes them, or it
// mutates nothing and returns the 1-based positions of the contested seats.
//
// KEYS[1] = lock index set, KEYS[2..] = seat lock keys
// ARGV[1] = holdID, ARGV[2] = ttl seconds, ARGV[3..] = seat ids
var acquireSeatsScript = redis.NewScript(`
	local conflicts = {}

	for i = 2, #KEYS do
		if redis.call("EXISTS", KEYS[i]) == 1 then
			conflicts[#conflicts + 1] = i - 1
		end
	end

	if #conflicts > 0 then
		return conflicts
	end

	for i = 2, #KEYS do
		redis.call("SET", KEYS[i], ARGV[1], "EX", ARGV[2])
		redis.call("SADD", KEYS[1], ARGV[i + 1])
	end

	return {}
`)

// releaseSeatsScript reverts the seats still owned by the hold and removes
// the record. Seats already taken over by someone else are left alone.
//
// KEYS[1] = hold record, KEYS[2] = lock index set, KEYS[3] = session pointer,
// KEYS[4..] = seat lock keys
// ARGV[1] = holdID, ARGV[2..] = seat ids matching KEYS[4..]
var releaseSeatsScript = redis.NewScript(`
	if redis.call("EXISTS", KEYS[1]) == 0 then
		return 0
	end

	for i = 4, #KEYS do
		if redis.call("GET", KEYS[i]) == ARGV[1] then
			redis.call("DEL", KEYS[i])
			redis.call("SREM", KEYS[2], ARGV[i - 2])
		end
	end

	redis.call("DEL", KEYS[1])
	redis.call("DEL", KEYS[3])

	return 1
`)

// claimHoldScript consumes a hold for confirmation. The record must still
// exist and every seat lock must still belong to the hold; otherwise nothing
// is consumed. Deleting the record is what makes confirm-vs-release races
// single-winner.
//
// KEYS[1] = hold record, KEYS[2..] = seat lock keys
// ARGV[1] = holdID
var claimHoldScript = redis.NewScript(`
	local data = redis.call("GET", KEYS[1])
	if not data then
		return {err = "hold missing"}
	end

	for i = 2, #KEYS do
		if redis.call("GET", KEYS[i]) ~= ARGV[1] then
			return {err = "seats lost"}
		end
	end

	redis.call("DEL", KEYS[1])

	return data
`)

// pruneScreeningScript walks the lock index of a screening, drops members
// whose seat locks have lapsed and returns {valid, reclaimed} seat ids.
//
// KEYS[1] = lock index set
// ARGV[1] = screening id
var pruneScreeningScript = redis.NewScript(`
	local setKey = KEYS[1]
	local screeningId = ARGV[1]
	local cursor = "0"
	local batchSize = 100
	local reclaimed = {}
	local valid = {}

	repeat
		local result = redis.call("SSCAN", setKey, cursor, "COUNT", batchSize)
		cursor = result[1]

		for _, seatId in ipairs(result[2]) do
			local lockKey = "seat_hold:" .. screeningId .. ":" .. seatId
			if redis.call("EXISTS", lockKey) == 0 then
				reclaimed[#reclaimed + 1] = seatId
			else
				valid[#valid + 1] = seatId
			end
		end
	until cursor == "0"

	if #reclaimed > 0 then
		redis.call("SREM", setKey, unpack(reclaimed))
	end

	return {valid, reclaimed}
`)

type RedisHoldStore struct {
	redis redis.UniversalClient
}

func NewRedisHoldStore(client redis.UniversalClient) *RedisHoldStore {
	return &RedisHoldStore{
		redis: client,
	}
}

func (s *RedisHoldStore) Create(ctx context.Context, hold domain.Hold) error {
	ttl := time.Until(hold.ExpiresAt)
	if ttl <= 0 {
		return domain.ErrHoldExpired
	}

	sessionKey := sessionHoldKey(hold.SessionID, hold.ScreeningID)

	ok, err := s.redis.SetNX(ctx, sessionKey, hold.ID, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to register session hold: %w", err)
	}
	if !ok {
		return domain.ErrActiveHoldExists
	}

	seatIDs := hold.SeatIDs()
	keys := make([]string, 0, len(seatIDs)+1)
	keys = append(keys, seatIndexKey(hold.ScreeningID))
	for _, seatID := range seatIDs {
		keys = append(keys, seatHoldKey(hold.ScreeningID, seatID))
	}

	argv := make([]interface{}, 0, len(seatIDs)+2)
	argv = append(argv, hold.ID, int(ttl.Seconds()))
	for _, seatID := range seatIDs {
		argv = append(argv, seatID)
	}

	conflicts, err := acquireSeatsScript.Run(ctx, s.redis, keys, argv...).Int64Slice()
	if err != nil {
		s.redis.Del(ctx, sessionKey)
		return fmt.Errorf("failed to run seat acquisition script: %w", err)
	}

	if len(conflicts) > 0 {
		s.redis.Del(ctx, sessionKey)

		conflictIDs := make([]int, len(conflicts))
		for i, idx := range conflicts {
			conflictIDs[i] = seatIDs[idx-1]
		}

		return &domain.SeatConflictError{SeatIDs: conflictIDs}
	}

	holdBytes, err := json.Marshal(hold)
	if err != nil {
		s.rollbackSeatLocks(ctx, hold)
		return fmt.Errorf("failed to marshal hold: %w", err)
	}

	err = s.redis.Set(ctx, holdKey(hold.ID), holdBytes, ttl+recordGraceWindow).Err()
	if err != nil {
		s.rollbackSeatLocks(ctx, hold)
		return fmt.Errorf("failed to store hold record: %w", err)
	}

	return nil
}

func (s *RedisHoldStore) rollbackSeatLocks(ctx context.Context, hold domain.Hold) {
	seatIDs := hold.SeatIDs()

	lockKeys := make([]string, len(seatIDs))
	members := make([]interface{}, len(seatIDs))
	for i, seatID := range seatIDs {
		lockKeys[i] = seatHoldKey(hold.ScreeningID, seatID)
		members[i] = seatID
	}

	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, lockKeys...)
	pipe.SRem(ctx, seatIndexKey(hold.ScreeningID), members...)
	pipe.Del(ctx, sessionHoldKey(hold.SessionID, hold.ScreeningID))

	if _, err := pipe.Exec(ctx); err != nil {
		// The locks self-expire via TTL, so a failed rollback only delays
		// the seats becoming visible as available again.
		return
	}
}

func (s *RedisHoldStore) Get(ctx context.Context, holdID string) (*domain.Hold, error) {
	holdBytes, err := s.redis.Get(ctx, holdKey(holdID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrHoldNotFound
		}

		return nil, fmt.Errorf("failed to fetch hold record: %w", err)
	}

	var hold domain.Hold
	if err := json.Unmarshal(holdBytes, &hold); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hold %s: %w", holdID, err)
	}

	hold.ID = holdID

	return &hold, nil
}

func (s *RedisHoldStore) GetSessionHoldID(ctx context.Context, sessionID string, screeningID int) (string, error) {
	holdID, err := s.redis.Get(ctx, sessionHoldKey(sessionID, screeningID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("failed to fetch session hold: %w", err)
	}

	return holdID, nil
}

func (s *RedisHoldStore) Release(ctx context.Context, holdID string) (bool, error) {
	hold, err := s.Get(ctx, holdID)
	if err != nil {
		if errors.Is(err, domain.ErrHoldNotFound) {
			return false, nil
		}

		return false, err
	}

	seatIDs := hold.SeatIDs()
	keys := make([]string, 0, len(seatIDs)+3)
	keys = append(keys,
		holdKey(holdID),
		seatIndexKey(hold.ScreeningID),
		sessionHoldKey(hold.SessionID, hold.ScreeningID),
	)
	for _, seatID := range seatIDs {
		keys = append(keys, seatHoldKey(hold.ScreeningID, seatID))
	}

	argv := make([]interface{}, 0, len(seatIDs)+1)
	argv = append(argv, holdID)
	for _, seatID := range seatIDs {
		argv = append(argv, seatID)
	}

	released, err := releaseSeatsScript.Run(ctx, s.redis, keys, argv...).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to run hold release script: %w", err)
	}

	return released == 1, nil
}

func (s *RedisHoldStore) Claim(ctx context.Context, holdID string) (*domain.Hold, error) {
	hold, err := s.Get(ctx, holdID)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(hold.Seats)+1)
	keys = append(keys, holdKey(holdID))
	for _, seatID := range hold.SeatIDs() {
		keys = append(keys, seatHoldKey(hold.ScreeningID, seatID))
	}

	err = claimHoldScript.Run(ctx, s.redis, keys, holdID).Err()
	if err != nil {
		switch {
		case redis.HasErrorPrefix(err, "hold missing"):
			return nil, domain.ErrHoldNotFound
		case redis.HasErrorPrefix(err, "seats lost"):
			return nil, domain.ErrHoldExpired
		default:
			return nil, fmt.Errorf("failed to run hold claim script: %w", err)
		}
	}

	return hold, nil
}

func (s *RedisHoldStore) ReleaseSeats(ctx context.Context, hold domain.Hold) error {
	seatIDs := hold.SeatIDs()

	lockKeys := make([]string, len(seatIDs))
	members := make([]interface{}, len(seatIDs))
	for i, seatID := range seatIDs {
		lockKeys[i] = seatHoldKey(hold.ScreeningID, seatID)
		members[i] = seatID
	}

	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, lockKeys...)
	pipe.SRem(ctx, seatIndexKey(hold.ScreeningID), members...)
	pipe.Del(ctx, sessionHoldKey(hold.SessionID, hold.ScreeningID))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to release claimed seats: %w", err)
	}

	return nil
}

func (s *RedisHoldStore) PruneScreening(ctx context.Context, screeningID int) ([]int, []int, error) {
	result, err := pruneScreeningScript.Run(ctx, s.redis, []string{seatIndexKey(screeningID)}, screeningID).Slice()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to run prune script: %w", err)
	}

	if len(result) != 2 {
		return nil, nil, fmt.Errorf("unexpected prune script reply of length %d", len(result))
	}

	valid, err := toIntSlice(result[0])
	if err != nil {
		return nil, nil, err
	}

	reclaimed, err := toIntSlice(result[1])
	if err != nil {
		return nil, nil, err
	}

	return valid, reclaimed, nil
}

func toIntSlice(v interface{}) ([]int, error) {
	members, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected prune script reply element %T", v)
	}

	ids := make([]int, 0, len(members))
	for _, m := range members {
		switch m := m.(type) {
		case string:
			var id int
			if _, err := fmt.Sscanf(m, "%d", &id); err != nil {
				return nil, fmt.Errorf("unexpected seat id %q in prune reply", m)
			}
			ids = append(ids, id)
		case int64:
			ids = append(ids, int(m))
		default:
			return nil, fmt.Errorf("unexpected seat id type %T in prune reply", m)
		}
	}

	return ids, nil
}

func holdKey(holdID string) string {
	return fmt.Sprintf("hold:%s", holdID)
}

func seatHoldKey(screeningID, seatID int) string {
	return fmt.Sprintf("seat_hold:%d:%d", screeningID, seatID)
}

func seatIndexKey(screeningID int) string {
	return fmt.Sprintf("seat_holds:%d", screeningID)
}

func sessionHoldKey(sessionID string, screeningID int) string {
	return fmt.Sprintf("hold_session:%s:%d", sessionID, screeningID)
}
