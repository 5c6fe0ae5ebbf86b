package domain

// Feature vector layout. Order is fixed: the signal model's trees index
// features by position, so inserting a feature anywhere but the end is a
// breaking change for serialized weights.
const (
	FeatPriceVsSMA20 = iota
	FeatPriceVsSMA50
	FeatPriceVsSMA200
	FeatEMA12Delta
	FeatEMA26Delta
	FeatRSI14
	FeatMACDLine
	FeatMACDSignal
	FeatMACDHistogram
	FeatATRNormalized
	FeatBollingerPos
	FeatBollingerWidth
	FeatRealizedVol5
	FeatRealizedVol10
	FeatRealizedVol20
	FeatVolumeRatio
	FeatMomentum5
	FeatMomentum10
	FeatIVRank
	FeatIVTermSlope
	FeatIVSkew

	FeatureCount // total number of features
)

// FeatureNames maps feature index to display name, in vector order.
var FeatureNames = [FeatureCount]string{
	"price_vs_sma20",
	"price_vs_sma50",
	"price_vs_sma200",
	"ema12_delta",
	"ema26_delta",
	"rsi14",
	"macd_line",
	"macd_signal",
	"macd_histogram",
	"atr_normalized",
	"bollinger_position",
	"bollinger_width",
	"realized_vol_5",
	"realized_vol_10",
	"realized_vol_20",
	"volume_ratio",
	"momentum_5",
	"momentum_10",
	"iv_rank",
	"iv_term_slope",
	"iv_skew",
}

// FeatureVector is a fixed-order numeric feature array.
// Every element is finite: non-finite inputs are mapped to 0 at build time.
type FeatureVector [FeatureCount]float64

// IVMetrics holds externally supplied volatility-surface metrics.
type IVMetrics struct {
	IVRank     float64 // percentile of current IV within its history, [0,100]
	TermSlope  float64 // front-to-back expiry IV slope
	Skew       float64 // put-call IV skew
	Approx     bool    // true when derived from historical vol rather than quotes
	Confidence float64 // provider confidence, [0,1]
}
