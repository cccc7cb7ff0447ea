package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"
)

type ValkeyOptions struct {
	Address  string
	Password string
	UseTLS   bool
	TTL      time.Duration
}

type ValkeyClient struct {
	Client valkey.Client
	ttl    time.Duration
}

func NewValkeyClient(opts ValkeyOptions) (*ValkeyClient, error) {
	clientOpts := valkey.ClientOption{
		InitAddress: []string{
			opts.Address,
		},
		Password:         opts.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if opts.UseTLS {
		clientOpts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey", slog.String("address", opts.Address))

	return &ValkeyClient{Client: client, ttl: opts.TTL}, nil
}

func (vc *ValkeyClient) Close() {
	vc.Client.Close()
}

// GetScore returns the cached score for key. found is false on a cache miss.
func (vc *ValkeyClient) GetScore(ctx context.Context, key string) (float64, bool, error) {
	res := vc.DoWithRetry(ctx, vc.Client.B().Get().Key(key).Build(), 2)
	if err := res.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return 0, false, nil
		}
		return 0, false, err
	}

	raw, err := res.ToString()
	if err != nil {
		return 0, false, err
	}
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("[ValkeyClient] malformed cached score %q: %w", raw, err)
	}
	return score, true, nil
}

func (vc *ValkeyClient) SetScore(ctx context.Context, key string, score float64) error {
	value := strconv.FormatFloat(score, 'g', -1, 64)

	var cmd valkey.Completed
	if vc.ttl > 0 {
		cmd = vc.Client.B().Set().Key(key).Value(value).ExSeconds(int64(vc.ttl.Seconds())).Build()
	} else {
		cmd = vc.Client.B().Set().Key(key).Value(value).Build()
	}

	return vc.DoWithRetry(ctx, cmd, 2).Error()
}

func (vc *ValkeyClient) DoWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	// commands are recycled after Do unless pinned
	completed = completed.Pin()

	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.Client.Do(ctx, completed)
		err := result.Error()
		if err == nil || valkey.IsValkeyNil(err) || !isConnectionError(err) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))

		time.Sleep(50 * time.Millisecond)
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
