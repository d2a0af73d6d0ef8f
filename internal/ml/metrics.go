package ml

import (
	"fmt"
	"strings"
)

// ClassMetrics holds precision, recall and F1 for one class.
type ClassMetrics struct {
	Class     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report is the per-class evaluation report for one prediction set.
type Report struct {
	Classes  []ClassMetrics
	Accuracy float64
	MacroF1  float64
}

// Evaluate computes accuracy, per-class precision/recall/F1 and macro-F1.
// Macro-F1 averages the per-class F1 unweighted, so minority classes count
// as much as the majority class.
func Evaluate(yTrue, yPred []int, classNames []string) Report {
	k := len(classNames)
	tp := make([]int, k)
	fp := make([]int, k)
	fn := make([]int, k)
	support := make([]int, k)

	correct := 0
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		support[t]++
		if t == p {
			tp[t]++
			correct++
		} else {
			fp[p]++
			fn[t]++
		}
	}

	report := Report{Classes: make([]ClassMetrics, k)}
	var f1Sum float64
	for c := 0; c < k; c++ {
		var precision, recall, f1 float64
		if tp[c]+fp[c] > 0 {
			precision = float64(tp[c]) / float64(tp[c]+fp[c])
		}
		if tp[c]+fn[c] > 0 {
			recall = float64(tp[c]) / float64(tp[c]+fn[c])
		}
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		f1Sum += f1
		report.Classes[c] = ClassMetrics{
			Class:     classNames[c],
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   support[c],
		}
	}
	if len(yTrue) > 0 {
		report.Accuracy = float64(correct) / float64(len(yTrue))
	}
	if k > 0 {
		report.MacroF1 = f1Sum / float64(k)
	}
	return report
}

// MacroF1 is a convenience wrapper returning only the macro-averaged F1.
func MacroF1(yTrue, yPred []int, numClasses int) float64 {
	names := make([]string, numClasses)
	return Evaluate(yTrue, yPred, names).MacroF1
}

// String renders the report in a compact fixed-width table.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %9s %9s %9s %9s\n", "class", "precision", "recall", "f1", "support")
	for _, cm := range r.Classes {
		fmt.Fprintf(&b, "%-10s %9.3f %9.3f %9.3f %9d\n", cm.Class, cm.Precision, cm.Recall, cm.F1, cm.Support)
	}
	fmt.Fprintf(&b, "accuracy %.3f  macro-f1 %.3f\n", r.Accuracy, r.MacroF1)
	return b.String()
}
