package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DLQPrefix + queue holds the notification jobs the pool gave up on, newest
// first. An entry is what an operator needs to resend a settlement receipt
// by hand.
const DLQPrefix = "dlq:"

// dlqMaxEntries bounds each list; older entries are dropped.
const dlqMaxEntries = 500

// DLQEntry is one dead job. Payload is the job payload as received, or a JSON
// string with the raw text when the message could not be decoded.
type DLQEntry struct {
	Queue         string          `json:"queue"`
	JobType       string          `json:"job_type"`
	LiquidacionID string          `json:"liquidacion_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	Attempts      int             `json:"attempts"`
	FailedAt      time.Time       `json:"failed_at"`
}

func nuevaEntradaDLQ(queue, jobType string, payload []byte, reason string, attempts int) DLQEntry {
	e := DLQEntry{
		Queue:    queue,
		JobType:  jobType,
		Reason:   reason,
		Attempts: attempts,
		FailedAt: time.Now().UTC(),
	}
	if json.Valid(payload) {
		e.Payload = payload
		var ref LiquidacionJobPayload
		if json.Unmarshal(payload, &ref) == nil {
			e.LiquidacionID = ref.LiquidacionID
		}
	} else {
		e.Payload, _ = json.Marshal(string(payload))
	}
	return e
}

// SendToDLQ parks a job in dlq:{queue}.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue, jobType string, payload []byte, reason string, attempts int) error {
	data, err := json.Marshal(nuevaEntradaDLQ(queue, jobType, payload, reason, attempts))
	if err != nil {
		return fmt.Errorf("dlq %s: %w", queue, err)
	}
	key := DLQPrefix + queue
	_, err = rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, dlqMaxEntries-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("dlq %s: %w", queue, err)
	}
	return nil
}

func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// UltimaDLQ returns the newest entry of dlq:{queue}, or nil when it is empty.
func UltimaDLQ(ctx context.Context, rdb *redis.Client, queue string) (*DLQEntry, error) {
	raw, err := rdb.LIndex(ctx, DLQPrefix+queue, 0).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var e DLQEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("dlq %s: %w", queue, err)
	}
	return &e, nil
}
