package metrics

// Recorder は手続き結果を記録する
type Recorder interface {
	// ProcedureResult は手続きの結果を記録する
	ProcedureResult(procedure, result string)
	// Retransmission はNAS再送を記録する
	Retransmission(procedure string)
	// StaleAnswer は破棄したコラボレータ応答を記録する
	StaleAnswer(kind string)
}

// Nop は何も記録しないRecorder
type Nop struct{}

func (Nop) ProcedureResult(string, string) {}
func (Nop) Retransmission(string)          {}
func (Nop) StaleAnswer(string)             {}
