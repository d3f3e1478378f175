package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yaron8/netwatch/telemetrics"
)

const (
	keyLatest     = "netwatch:latest"
	keyHistory    = "netwatch:history"
	keyValidators = "netwatch:validators"
	keyLastUpdate = "netwatch:last_update"
)

// ErrNotFound is returned when a key is absent or expired.
var ErrNotFound = errors.New("not found")

// DAOSnapshots persists dashboard state in Redis.
type DAOSnapshots struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewDAOSnapshots creates a new DAOSnapshots with the provided Redis client
func NewDAOSnapshots(redisClient *redis.Client, ttl time.Duration) *DAOSnapshots {
	return &DAOSnapshots{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

// SaveLatest stores the most recent snapshot with the configured TTL
func (dao *DAOSnapshots) SaveLatest(ctx context.Context, snap telemetrics.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return dao.redisClient.Set(ctx, keyLatest, data, dao.ttl).Err()
}

func (dao *DAOSnapshots) GetLatest(ctx context.Context) (telemetrics.Snapshot, error) {
	var snap telemetrics.Snapshot
	data, err := dao.redisClient.Get(ctx, keyLatest).Bytes()
	if errors.Is(err, redis.Nil) {
		return snap, ErrNotFound
	}
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("corrupt latest snapshot: %w", err)
	}
	return snap, nil
}

// AppendSample pushes a history sample and trims the list to the newest limit entries.
func (dao *DAOSnapshots) AppendSample(ctx context.Context, sample telemetrics.Sample, limit int) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return err
	}
	pipe := dao.redisClient.TxPipeline()
	pipe.RPush(ctx, keyHistory, data)
	pipe.LTrim(ctx, keyHistory, int64(-limit), -1)
	_, err = pipe.Exec(ctx)
	return err
}

// GetHistory returns stored samples oldest first.
func (dao *DAOSnapshots) GetHistory(ctx context.Context) ([]telemetrics.Sample, error) {
	items, err := dao.redisClient.LRange(ctx, keyHistory, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	samples := make([]telemetrics.Sample, 0, len(items))
	for _, item := range items {
		var s telemetrics.Sample
		if err := json.Unmarshal([]byte(item), &s); err != nil {
			return nil, fmt.Errorf("corrupt history sample: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// ReplaceValidators swaps the full validator table in one transaction.
func (dao *DAOSnapshots) ReplaceValidators(ctx context.Context, validators []telemetrics.Validator) error {
	fields := make(map[string]any, len(validators))
	for _, v := range validators {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fields[v.ID] = data
	}
	pipe := dao.redisClient.TxPipeline()
	pipe.Del(ctx, keyValidators)
	if len(fields) > 0 {
		pipe.HSet(ctx, keyValidators, fields)
		pipe.Expire(ctx, keyValidators, dao.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// GetValidators returns the synced validator table ordered by id.
func (dao *DAOSnapshots) GetValidators(ctx context.Context) ([]telemetrics.Validator, error) {
	all, err := dao.redisClient.HGetAll(ctx, keyValidators).Result()
	if err != nil {
		return nil, err
	}
	validators := make([]telemetrics.Validator, 0, len(all))
	for id, raw := range all {
		var v telemetrics.Validator
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("corrupt validator %s: %w", id, err)
		}
		validators = append(validators, v)
	}
	sort.Slice(validators, func(i, j int) bool { return validators[i].ID < validators[j].ID })
	return validators, nil
}

func (dao *DAOSnapshots) GetValidator(ctx context.Context, id string) (telemetrics.Validator, error) {
	var v telemetrics.Validator
	raw, err := dao.redisClient.HGet(ctx, keyValidators, id).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, ErrNotFound
	}
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("corrupt validator %s: %w", id, err)
	}
	return v, nil
}

// SetLastUpdateTime records when the validator table was last synced (unix seconds)
func (dao *DAOSnapshots) SetLastUpdateTime(ctx context.Context, ts int64) error {
	return dao.redisClient.Set(ctx, keyLastUpdate, ts, 0).Err()
}

func (dao *DAOSnapshots) GetLastUpdateTime(ctx context.Context) (int64, error) {
	val, err := dao.redisClient.Get(ctx, keyLastUpdate).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}
