package engine

import "git.lost.host/meutraa/tapbeat/internal/game"

// Observer is told about everything the presentation layer may want to
// show. Calls are made from the engine tick and must not block.
type Observer interface {
	OnJudgement(res game.JudgementResult)
	OnGridLocked(bpm float64)
	OnGridReset()
}

// ObserverFuncs adapts plain functions to an Observer. Nil fields are
// skipped.
type ObserverFuncs struct {
	Judgement  func(res game.JudgementResult)
	GridLocked func(bpm float64)
	GridReset  func()
}

func (o ObserverFuncs) OnJudgement(res game.JudgementResult) {
	if nil != o.Judgement {
		o.Judgement(res)
	}
}

func (o ObserverFuncs) OnGridLocked(bpm float64) {
	if nil != o.GridLocked {
		o.GridLocked(bpm)
	}
}

func (o ObserverFuncs) OnGridReset() {
	if nil != o.GridReset {
		o.GridReset()
	}
}
