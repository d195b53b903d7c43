package model

import "database/sql/driver"

type JournalState string

const (
	JournalStateCreated  JournalState = "CREATED"
	JournalStateIssued   JournalState = "ISSUED"
	JournalStateOverlaid JournalState = "OVERLAID"
	JournalStateFailed   JournalState = "FAILED"
)

func (self *JournalState) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*self = JournalState(v)
	case []byte:
		*self = JournalState(v)
	}
	return nil
}

func (self JournalState) Value() (driver.Value, error) {
	return string(self), nil
}
