package model

// Summary holds the dashboard statistics for one page of leads.
// TotalLeads counts the whole filtered set; QualifiedCount, TotalValue, and
// AvgScore are computed over the rows of the current page only.
type Summary struct {
	TotalLeads     int     `json:"total_leads"`
	QualifiedCount int     `json:"qualified_count"`
	TotalValue     float64 `json:"total_value"`
	AvgScore       float64 `json:"avg_score"`
}

// Summarize derives a Summary from the current page of leads and the total
// matching count. An empty page yields zeros (AvgScore included).
func Summarize(leads []*Lead, total int) Summary {
	s := Summary{TotalLeads: total}
	if len(leads) == 0 {
		return s
	}

	var scoreSum int
	for _, l := range leads {
		if l.IsQualified {
			s.QualifiedCount++
		}
		s.TotalValue += l.LeadValue
		scoreSum += l.Score
	}
	s.AvgScore = float64(scoreSum) / float64(len(leads))
	return s
}
