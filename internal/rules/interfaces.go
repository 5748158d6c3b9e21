package rules

type Engine interface {
	Evaluate(in Input) Directive
}
