package statistics

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ConstantTerm names the intercept column of the design matrix.
const ConstantTerm = "const"

// pinvRcond matches the relative singular value cutoff of a standard pseudo-inverse.
const pinvRcond = 1e-15

// largeConditionNumber triggers the collinearity note in the summary.
const largeConditionNumber = 1000

var (
	// ErrNoObservations is returned when no complete row is left to fit.
	ErrNoObservations = errors.New("no complete observations to fit")
	// ErrShapeMismatch is returned when the inputs do not line up.
	ErrShapeMismatch = errors.New("regression input shape mismatch")
)

// Coefficient is one fitted parameter with its inference statistics.
type Coefficient struct {
	Name     string  `json:"name"`
	Estimate float64 `json:"estimate"`
	StdErr   float64 `json:"std_err"`
	TStat    float64 `json:"t_stat"`
	PValue   float64 `json:"p_value"`
	CILower  float64 `json:"ci_lower"`
	CIUpper  float64 `json:"ci_upper"`
}

// Model is an ordinary least squares fit of a deviation series on the
// currency basket. It is immutable once returned by FitOLS.
type Model struct {
	Dependent       string
	Coefficients    []Coefficient
	Observations    int
	Excluded        int // rows dropped for missing values
	Rank            int
	DFModel         float64
	DFResid         float64
	RSquared        float64
	AdjRSquared     float64
	FStatistic      float64
	FPValue         float64
	LogLikelihood   float64
	AIC             float64
	BIC             float64
	DurbinWatson    float64
	Omnibus         float64
	OmnibusPValue   float64
	JarqueBera      float64
	JBPValue        float64
	Skew            float64
	Kurtosis        float64
	ConditionNumber float64
	FittedAt        time.Time

	residuals []float64
}

// FitOLS regresses y on the columns of x plus an intercept.
// x is row-major: x[i] holds the regressors of observation i, in the order of names.
// Rows where y or any regressor is NaN are excluded from the fit.
//
// The solution uses the Moore-Penrose pseudo-inverse, so rank-deficient
// designs still produce estimates; the degeneracy shows up as inflated or
// NaN standard errors and a large condition number.
func FitOLS(dependent string, y []float64, x [][]float64, names []string) (*Model, error) {
	if len(y) != len(x) {
		return nil, fmt.Errorf("%w: %d responses for %d regressor rows", ErrShapeMismatch, len(y), len(x))
	}

	p := len(names)
	rows := make([]int, 0, len(y))
	for i := range y {
		if len(x[i]) != p {
			return nil, fmt.Errorf("%w: row %d has %d regressors, expected %d", ErrShapeMismatch, i, len(x[i]), p)
		}
		if completeRow(y[i], x[i]) {
			rows = append(rows, i)
		}
	}

	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("%s: %w", dependent, ErrNoObservations)
	}
	k := p + 1

	design := mat.NewDense(n, k, nil)
	response := mat.NewVecDense(n, nil)
	for r, i := range rows {
		design.Set(r, 0, 1)
		for j, v := range x[i] {
			design.Set(r, j+1, v)
		}
		response.SetVec(r, y[i])
	}

	var svd mat.SVD
	if ok := svd.Factorize(design, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%s: singular value decomposition failed", dependent)
	}
	singular := svd.Values(nil)
	rank := svd.Rank(pinvRcond)

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// V * diag(1/s), truncated at the numerical rank
	_, width := v.Dims()
	vScaled := mat.NewDense(k, width, nil)
	for i := 0; i < k; i++ {
		for j := 0; j < rank; j++ {
			vScaled.Set(i, j, v.At(i, j)/singular[j])
		}
	}

	var pinv mat.Dense
	pinv.Mul(vScaled, u.T())

	var beta mat.VecDense
	beta.MulVec(&pinv, response)

	// (X'X)^+ = V diag(1/s^2) V'
	var normCov mat.Dense
	normCov.Mul(vScaled, vScaled.T())

	var fitted mat.VecDense
	fitted.MulVec(design, &beta)

	residuals := make([]float64, n)
	var ssr float64
	for i := 0; i < n; i++ {
		e := response.AtVec(i) - fitted.AtVec(i)
		residuals[i] = e
		ssr += e * e
	}

	m := &Model{
		Dependent:       dependent,
		Observations:    n,
		Excluded:        len(y) - n,
		Rank:            rank,
		DFModel:         float64(rank - 1),
		DFResid:         float64(n - rank),
		ConditionNumber: singular[0] / singular[len(singular)-1],
		FittedAt:        time.Now().UTC(),
		residuals:       residuals,
	}

	scale := math.NaN()
	if m.DFResid > 0 {
		scale = ssr / m.DFResid
	}

	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: m.DFResid}
	tcrit := math.NaN()
	if m.DFResid > 0 {
		tcrit = tdist.Quantile(0.975)
	}

	allNames := append([]string{ConstantTerm}, names...)
	m.Coefficients = make([]Coefficient, k)
	for j := 0; j < k; j++ {
		est := beta.AtVec(j)
		se := math.Sqrt(scale * normCov.At(j, j))
		t := est / se
		pv := math.NaN()
		if m.DFResid > 0 && !math.IsNaN(t) {
			pv = 2 * tdist.Survival(math.Abs(t))
		}
		m.Coefficients[j] = Coefficient{
			Name:     allNames[j],
			Estimate: est,
			StdErr:   se,
			TStat:    t,
			PValue:   pv,
			CILower:  est - tcrit*se,
			CIUpper:  est + tcrit*se,
		}
	}

	var mean float64
	for i := 0; i < n; i++ {
		mean += response.AtVec(i)
	}
	mean /= float64(n)
	var tss float64
	for i := 0; i < n; i++ {
		d := response.AtVec(i) - mean
		tss += d * d
	}

	m.RSquared = 1 - ssr/tss
	m.AdjRSquared = 1 - float64(n-1)/m.DFResid*(1-m.RSquared)

	m.FStatistic, m.FPValue = math.NaN(), math.NaN()
	if m.DFModel > 0 && m.DFResid > 0 {
		m.FStatistic = ((tss - ssr) / m.DFModel) / (ssr / m.DFResid)
		m.FPValue = distuv.F{D1: m.DFModel, D2: m.DFResid}.Survival(m.FStatistic)
	}

	nf := float64(n)
	params := m.DFModel + 1
	m.LogLikelihood = -nf/2*math.Log(2*math.Pi) - nf/2*math.Log(ssr/nf) - nf/2
	m.AIC = -2*m.LogLikelihood + 2*params
	m.BIC = -2*m.LogLikelihood + math.Log(nf)*params

	m.DurbinWatson = durbinWatson(residuals)
	m.Skew, m.Kurtosis = moments(residuals)
	m.JarqueBera = nf / 6 * (m.Skew*m.Skew + (m.Kurtosis-3)*(m.Kurtosis-3)/4)
	m.JBPValue = distuv.ChiSquared{K: 2}.Survival(m.JarqueBera)
	m.Omnibus, m.OmnibusPValue = omnibus(nf, m.Skew, m.Kurtosis)

	return m, nil
}

// Coefficient returns the fitted coefficient with the given name.
func (m *Model) Coefficient(name string) (Coefficient, bool) {
	for _, c := range m.Coefficients {
		if c.Name == name {
			return c, true
		}
	}
	return Coefficient{}, false
}

// Params returns the coefficient estimates in design-matrix order.
func (m *Model) Params() []float64 {
	out := make([]float64, len(m.Coefficients))
	for i, c := range m.Coefficients {
		out[i] = c.Estimate
	}
	return out
}

// Residuals returns a copy of the fit residuals.
func (m *Model) Residuals() []float64 {
	out := make([]float64, len(m.residuals))
	copy(out, m.residuals)
	return out
}

func completeRow(y float64, x []float64) bool {
	if math.IsNaN(y) {
		return false
	}
	for _, v := range x {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

func durbinWatson(resid []float64) float64 {
	var num, den float64
	for i, e := range resid {
		den += e * e
		if i > 0 {
			d := e - resid[i-1]
			num += d * d
		}
	}
	return num / den
}

// moments returns the biased skewness and (non-excess) kurtosis.
func moments(x []float64) (skew, kurtosis float64) {
	n := float64(len(x))
	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= n

	var m2, m3, m4 float64
	for _, v := range x {
		d := v - mean
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	m2 /= n
	m3 /= n
	m4 /= n

	return m3 / math.Pow(m2, 1.5), m4 / (m2 * m2)
}

// omnibus is D'Agostino's K^2 normality test on the residual skew and kurtosis.
// It needs at least 8 observations.
func omnibus(n, skew, kurtosis float64) (float64, float64) {
	if n < 8 {
		return math.NaN(), math.NaN()
	}

	// skewness z-score
	y := skew * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := 3 * (n*n + 27*n - 70) * (n + 1) * (n + 3) / ((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(0.5*math.Log(w2))
	alpha := math.Sqrt(2 / (w2 - 1))
	if y == 0 {
		y = 1
	}
	zs := delta * math.Log(y/alpha+math.Sqrt((y/alpha)*(y/alpha)+1))

	// kurtosis z-score
	e := 3 * (n - 1) / (n + 1)
	varb2 := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	xk := (kurtosis - e) / math.Sqrt(varb2)
	sqrtBeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) * math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))
	term1 := 1 - 2/(9*a)
	denom := 1 + xk*math.Sqrt(2/(a-4))
	if denom == 0 {
		return math.NaN(), math.NaN()
	}
	term2 := math.Copysign(math.Cbrt((1-2/a)/math.Abs(denom)), denom)
	zk := (term1 - term2) / math.Sqrt(2/(9*a))

	k2 := zs*zs + zk*zk
	return k2, distuv.ChiSquared{K: 2}.Survival(k2)
}
