package league

import (
	"fmt"
	"time"
)

// League is the canonical record for one competition a provider reports
// results or standings for.
type League struct {
	ID            int64
	DisplayName   string
	CanonicalName string
	State         string
	Gender        string
	BirthYear     *int
	SeasonEndYear int
	QualityScore  int
	UpdatedAt     time.Time
}

func (l League) Validate() error {
	if l.DisplayName == "" {
		return fmt.Errorf("league display name is required")
	}
	if l.CanonicalName == "" {
		return fmt.Errorf("league canonical name is required")
	}
	return nil
}
