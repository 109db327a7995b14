package universe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollmap/kr-stock-screener/internal/contracts"
	"github.com/pollmap/kr-stock-screener/pkg/logger"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func mustInterval(t *testing.T, code string, listed time.Time, delisted *time.Time, reason string) *contracts.ListingInterval {
	t.Helper()
	interval, err := contracts.NewListingInterval(code, listed, delisted, reason)
	require.NoError(t, err)
	return interval
}

func TestTracker_WasListedAt(t *testing.T) {
	tracker := NewTracker(logger.NewNop())

	// 2012년 상장폐지된 종목 (예: 분식회계 상폐)
	delisted := date(2012, 4, 30)
	tracker.AddInterval(mustInterval(t, "012345", date(1999, 9, 1), &delisted, "감사의견 거절"))

	tests := []struct {
		name string
		code string
		date time.Time
		want bool
	}{
		{"listed while alive", "012345", date(2011, 1, 1), true},
		{"listed on listing day", "012345", date(1999, 9, 1), true},
		{"not listed before listing", "012345", date(1999, 8, 31), false},
		{"delisting day itself is unlisted", "012345", date(2012, 4, 30), false},
		{"not listed after delisting", "012345", date(2013, 1, 1), false},
		{"no interval record means listed", "005930", date(2020, 1, 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tracker.WasListedAt(tt.code, tt.date))
		})
	}
}

func TestTracker_Relisting(t *testing.T) {
	tracker := NewTracker(logger.NewNop())

	// 상폐 후 재상장: 구간 두 개
	firstDelisted := date(2010, 6, 1)
	tracker.AddInterval(mustInterval(t, "054321", date(2001, 3, 2), &firstDelisted, "자진상폐"))
	tracker.AddInterval(mustInterval(t, "054321", date(2015, 9, 14), nil, ""))

	assert.Equal(t, 2, tracker.IntervalCount("054321"))

	assert.True(t, tracker.WasListedAt("054321", date(2005, 1, 1)), "first interval")
	assert.False(t, tracker.WasListedAt("054321", date(2012, 1, 1)), "gap between intervals")
	assert.True(t, tracker.WasListedAt("054321", date(2020, 1, 1)), "second interval, still listed")
}

func TestTracker_UniverseAt(t *testing.T) {
	tracker := NewTracker(logger.NewNop())

	delisted := date(2018, 2, 1)
	tracker.AddInterval(mustInterval(t, "111111", date(2000, 1, 4), &delisted, "부도"))
	tracker.AddInterval(mustInterval(t, "222222", date(2000, 1, 4), nil, ""))

	candidates := []*contracts.Security{
		{Code: "111111", Name: "부도기업", Market: "KOSDAQ"},
		{Code: "222222", Name: "생존기업", Market: "KOSPI"},
		// 트래커에 구간이 없는 종목은 후보 자체의 상장일로만 거른다
		{Code: "333333", Name: "신규상장", Market: "KOSDAQ", ListedAt: date(2019, 6, 1)},
	}

	// 2017: 부도기업도 당시에는 살아 있었다 — 제외하면 생존 편향
	universe := tracker.UniverseAt(date(2017, 4, 1), candidates)
	require.Len(t, universe, 2)
	assert.Equal(t, "111111", universe[0].Code)
	assert.Equal(t, "222222", universe[1].Code)

	// 2019-04-01: 부도기업 상폐됨, 신규상장은 아직 상장 전
	universe = tracker.UniverseAt(date(2019, 4, 1), candidates)
	require.Len(t, universe, 1)
	assert.Equal(t, "222222", universe[0].Code)

	// 2020: 신규상장 편입
	universe = tracker.UniverseAt(date(2020, 4, 1), candidates)
	assert.Len(t, universe, 2)
}

func TestNewListingInterval_Invalid(t *testing.T) {
	delisted := date(2000, 1, 1)
	_, err := contracts.NewListingInterval("012345", date(2005, 1, 1), &delisted, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrInvalidInterval)
}
