package statistics

import (
	"fmt"
	"math"
	"strings"
)

const summaryWidth = 78

// Summary renders the fit as a fixed-width regression report.
func (m *Model) Summary() string {
	var b strings.Builder

	rule := strings.Repeat("=", summaryWidth)
	thin := strings.Repeat("-", summaryWidth)

	b.WriteString(center("OLS Regression Results", summaryWidth))
	b.WriteString("\n")
	b.WriteString(rule + "\n")

	left := [][2]string{
		{"Dep. Variable:", m.Dependent},
		{"Model:", "OLS"},
		{"Method:", "Least Squares"},
		{"Date:", m.FittedAt.Format("Mon, 02 Jan 2006")},
		{"Time:", m.FittedAt.Format("15:04:05")},
		{"No. Observations:", fmt.Sprintf("%d", m.Observations)},
		{"Df Residuals:", fmt.Sprintf("%.0f", m.DFResid)},
		{"Df Model:", fmt.Sprintf("%.0f", m.DFModel)},
		{"Covariance Type:", "nonrobust"},
	}
	right := [][2]string{
		{"R-squared:", formatFixed(m.RSquared, 3)},
		{"Adj. R-squared:", formatFixed(m.AdjRSquared, 3)},
		{"F-statistic:", formatGeneral(m.FStatistic, 4)},
		{"Prob (F-statistic):", formatGeneral(m.FPValue, 3)},
		{"Log-Likelihood:", formatGeneral(m.LogLikelihood, 5)},
		{"AIC:", formatGeneral(m.AIC, 4)},
		{"BIC:", formatGeneral(m.BIC, 4)},
		{"", ""},
		{"", ""},
	}
	writeTwoColumn(&b, left, right)
	b.WriteString(rule + "\n")

	fmt.Fprintf(&b, "%-10s%12s%11s%11s%11s%12s%11s\n", "", "coef", "std err", "t", "P>|t|", "[0.025", "0.975]")
	b.WriteString(thin + "\n")
	for _, c := range m.Coefficients {
		fmt.Fprintf(&b, "%-10s%12s%11s%11s%11s%12s%11s\n",
			truncate(c.Name, 10),
			formatCoef(c.Estimate),
			formatCoef(c.StdErr),
			formatFixed(c.TStat, 3),
			formatFixed(c.PValue, 3),
			formatCoef(c.CILower),
			formatCoef(c.CIUpper),
		)
	}
	b.WriteString(rule + "\n")

	diagLeft := [][2]string{
		{"Omnibus:", formatFixed(m.Omnibus, 3)},
		{"Prob(Omnibus):", formatFixed(m.OmnibusPValue, 3)},
		{"Skew:", formatFixed(m.Skew, 3)},
		{"Kurtosis:", formatFixed(m.Kurtosis, 3)},
	}
	diagRight := [][2]string{
		{"Durbin-Watson:", formatFixed(m.DurbinWatson, 3)},
		{"Jarque-Bera (JB):", formatFixed(m.JarqueBera, 3)},
		{"Prob(JB):", formatGeneral(m.JBPValue, 3)},
		{"Cond. No.", formatGeneral(m.ConditionNumber, 3)},
	}
	writeTwoColumn(&b, diagLeft, diagRight)
	b.WriteString(rule + "\n")

	b.WriteString("\nNotes:\n")
	b.WriteString("[1] Standard Errors assume that the covariance matrix of the errors is correctly specified.\n")
	if m.Excluded > 0 {
		fmt.Fprintf(&b, "[2] %d observations with missing values were excluded from the fit.\n", m.Excluded)
	}
	if m.Rank < len(m.Coefficients) {
		fmt.Fprintf(&b, "[%d] The design matrix is rank deficient (rank %d of %d columns).\n",
			nextNote(m), m.Rank, len(m.Coefficients))
	} else if m.ConditionNumber > largeConditionNumber || math.IsInf(m.ConditionNumber, 1) {
		fmt.Fprintf(&b, "[%d] The condition number is large, %s. This might indicate that there are\nstrong multicollinearity or other numerical problems.\n",
			nextNote(m), formatGeneral(m.ConditionNumber, 3))
	}

	return b.String()
}

func nextNote(m *Model) int {
	if m.Excluded > 0 {
		return 3
	}
	return 2
}

func writeTwoColumn(b *strings.Builder, left, right [][2]string) {
	half := summaryWidth / 2
	for i := range left {
		l := padPair(left[i][0], left[i][1], half)
		r := ""
		if i < len(right) {
			r = padPair(right[i][0], right[i][1], summaryWidth-half)
		}
		b.WriteString(strings.TrimRight(l+r, " "))
		b.WriteString("\n")
	}
}

// padPair left-aligns the label and right-aligns the value within width.
func padPair(label, value string, width int) string {
	if label == "" && value == "" {
		return strings.Repeat(" ", width)
	}
	gap := width - len(label) - len(value) - 1
	if gap < 1 {
		gap = 1
	}
	return label + strings.Repeat(" ", gap) + value + " "
}

func center(s string, width int) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func formatSpecial(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "nan", true
	case math.IsInf(v, 1):
		return "inf", true
	case math.IsInf(v, -1):
		return "-inf", true
	}
	return "", false
}

func formatFixed(v float64, prec int) string {
	if s, ok := formatSpecial(v); ok {
		return s
	}
	return fmt.Sprintf("%.*f", prec, v)
}

// formatGeneral switches to exponent form for very large or very small magnitudes.
func formatGeneral(v float64, prec int) string {
	if s, ok := formatSpecial(v); ok {
		return s
	}
	a := math.Abs(v)
	if v != 0 && (a >= 1e4 || a < 1e-4) {
		return fmt.Sprintf("%.*g", prec, v)
	}
	return fmt.Sprintf("%.*f", prec, v)
}

// formatCoef prints coefficients with four decimals unless that would hide them.
func formatCoef(v float64) string {
	if s, ok := formatSpecial(v); ok {
		return s
	}
	a := math.Abs(v)
	if v != 0 && (a >= 1e4 || a < 1e-3) {
		return fmt.Sprintf("%.4g", v)
	}
	return fmt.Sprintf("%.4f", v)
}
