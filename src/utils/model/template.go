package model

// Certificate layout chosen before the details are entered. Opaque to the workflow.
type Template struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}
