// Package ratelimiter はキーごとの固定ウィンドウ型レートリミッターを提供します。
package ratelimiter

import (
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ResetPolicy はウィンドウ経過後にカウンタをいつリセットするかを決めます。
type ResetPolicy int

const (
	// ResetLazy は上限に達したキーだけをウィンドウ経過後にリセットします。
	// 上限未満のままウィンドウが経過した場合はカウントせずに許可します。
	ResetLazy ResetPolicy = iota
	// ResetEager はウィンドウが経過していれば常にリセットします。
	ResetEager
)

// ParsePolicy maps the configuration value onto a ResetPolicy.
func ParsePolicy(s string) ResetPolicy {
	if strings.EqualFold(strings.TrimSpace(s), "eager") {
		return ResetEager
	}
	return ResetLazy
}

const shardCount = 64

// window は1キー分の状態です。
type window struct {
	count int
	start time.Time
}

type shard struct {
	mu      sync.Mutex
	windows map[string]*window
}

// KeyedLimiter はキーごとに limit 回/interval を許可します。
// 状態はプロセス内のみに保持され、再起動で失われます。
type KeyedLimiter struct {
	limit    int
	interval time.Duration
	policy   ResetPolicy
	now      func() time.Time
	shards   [shardCount]shard
}

// Option は KeyedLimiter の生成オプションです。
type Option func(*KeyedLimiter)

// WithClock はテスト用に時計を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(l *KeyedLimiter) { l.now = now }
}

// WithPolicy はリセットポリシーを指定します。
func WithPolicy(p ResetPolicy) Option {
	return func(l *KeyedLimiter) { l.policy = p }
}

// NewKeyedLimiter は新しい KeyedLimiter を生成します。
func NewKeyedLimiter(limit int, interval time.Duration, opts ...Option) *KeyedLimiter {
	l := &KeyedLimiter{
		limit:    limit,
		interval: interval,
		policy:   ResetLazy,
		now:      time.Now,
	}
	for i := range l.shards {
		l.shards[i].windows = make(map[string]*window)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow はリクエストを許可するかを判定し、状態を更新します。
func (l *KeyedLimiter) Allow(key string) bool {
	s := &l.shards[xxhash.Sum64String(key)%shardCount]
	now := l.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		w = &window{start: now}
		s.windows[key] = w
	}

	elapsed := now.Sub(w.start) >= l.interval
	if elapsed && (w.count >= l.limit || l.policy == ResetEager) {
		w.count = 0
		w.start = now
		elapsed = false
	}

	switch {
	case w.count >= l.limit:
		return false
	case elapsed:
		// lazy: ウィンドウ経過済みかつ上限未満。カウントもリセットもしない。
		return true
	default:
		w.count++
		return true
	}
}

// Len は追跡中のキー数を返します。
func (l *KeyedLimiter) Len() int {
	n := 0
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		n += len(s.windows)
		s.mu.Unlock()
	}
	return n
}
