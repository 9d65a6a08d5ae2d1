package models

// Subject codes stored on questions and books. SubjectAll is only a query filter.
const (
	SubjectJP   = "jp"
	SubjectMath = "math"
	SubjectSci  = "sci"
	SubjectSoc  = "soc"
	SubjectAll  = "all"
)

// DefaultTimeLimit is used for subjects missing from the table below.
const DefaultTimeLimit = 180

var timeLimits = map[string]int{
	SubjectJP:   120,
	SubjectMath: 300,
	SubjectSci:  180,
	SubjectSoc:  120,
	SubjectAll:  300,
}

// Subjects lists the codes a question or book may carry.
func Subjects() []string {
	return []string{SubjectJP, SubjectMath, SubjectSci, SubjectSoc}
}

func IsSubject(s string) bool {
	switch s {
	case SubjectJP, SubjectMath, SubjectSci, SubjectSoc:
		return true
	}
	return false
}

// TimeLimit returns the quiz-wide countdown in seconds for a subject.
func TimeLimit(subject string) int {
	if v, ok := timeLimits[subject]; ok {
		return v
	}
	return DefaultTimeLimit
}

var subjectLabels = map[string]string{
	SubjectJP:   "国語",
	SubjectMath: "算数",
	SubjectSci:  "理科",
	SubjectSoc:  "社会",
	SubjectAll:  "全教科",
}

// SubjectLabel is the display name, or the code itself when unknown.
func SubjectLabel(subject string) string {
	if l, ok := subjectLabels[subject]; ok {
		return l
	}
	return subject
}
