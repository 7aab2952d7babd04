package dto

// ProfitsRes maps a period key such as "2024-01" to its realised profit.
type ProfitsRes map[string]float64

type MetricRes struct {
	Metric   string  `json:"metric"`
	Interval string  `json:"interval"`
	Value    float64 `json:"value"`
}

type WinRateRes struct {
	WinRate float64 `json:"win_rate"`
}

type VolumeRes struct {
	Volume float64 `json:"volume"`
}

type PnLRes struct {
	Realised   float64 `json:"realised_pnl"`
	Unrealised float64 `json:"unrealised_pnl"`
}

// AllocationRes maps a ticker to its share of trades in percent.
type AllocationRes map[string]float64
