package policy

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/stytchctl/stytch"
)

// ErrRejected is returned by Enforce when a session does not satisfy a policy
var ErrRejected = errors.New("session rejected by policy")

// Option configures a Compiler
type Option func(*Compiler)

// WithCache keeps up to size compiled policies keyed by expression
func WithCache(size int) Option {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithFunctions adds custom helper functions to every policy
func WithFunctions(funcs map[string]any) Option {
	return func(c *Compiler) {
		maps.Copy(c.funcs, funcs)
	}
}

// Compiler turns expressions into Policies. It is safe for concurrent use.
type Compiler struct {
	funcs map[string]any
	cache *lruCache
}

// NewCompiler creates a compiler with the built-in helpers
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{funcs: make(map[string]any)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles an expression with a default compiler
func Compile(expression string) (*Policy, error) {
	return NewCompiler().Compile(expression)
}

// Compile checks expression against the session environment. Unknown
// identifiers and non-boolean results are compilation errors.
func (c *Compiler) Compile(expression string) (*Policy, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{Expression: expression, Reason: "empty expression"}
	}

	if c.cache != nil {
		if p, ok := c.cache.Get(expression); ok {
			return p, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(c.environment(stytch.Session{}, time.Time{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	p := &Policy{expression: expression, program: program, compiler: c}
	if c.cache != nil {
		c.cache.Put(expression, p)
	}
	return p, nil
}

// Cached returns the number of cached policies
func (c *Compiler) Cached() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}

// Policy is a compiled session policy
type Policy struct {
	expression string
	program    *vm.Program
	compiler   *Compiler
}

// Expression returns the source of the policy
func (p *Policy) Expression() string {
	return p.expression
}

// Evaluate reports whether session satisfies the policy at now
func (p *Policy) Evaluate(session stytch.Session, now time.Time) (bool, error) {
	result, err := expr.Run(p.program, p.compiler.environment(session, now))
	if err != nil {
		return false, &EvaluationError{
			Expression: p.expression,
			SessionID:  session.SessionID,
			Err:        err,
		}
	}
	return result.(bool), nil
}

// Enforce is Evaluate with rejection reported as ErrRejected
func (p *Policy) Enforce(session stytch.Session, now time.Time) error {
	ok, err := p.Evaluate(session, now)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrRejected, p.expression)
	}
	return nil
}

// environment exposes a session to expressions
func (c *Compiler) environment(s stytch.Session, now time.Time) map[string]any {
	env := make(map[string]any, 40)
	addHelperFunctions(env, now)

	deliveryMethods := make([]string, 0, len(s.AuthenticationFactors))
	types := make([]string, 0, len(s.AuthenticationFactors))
	for _, f := range s.AuthenticationFactors {
		deliveryMethods = append(deliveryMethods, f.DeliveryMethod)
		types = append(types, f.Type)
	}
	factors := s.FactorKeys()

	env["SessionID"] = s.SessionID
	env["UserID"] = s.UserID
	env["Factors"] = factors
	env["DeliveryMethods"] = deliveryMethods
	env["FactorTypes"] = types
	env["IPAddress"] = s.Attributes.IPAddress
	env["UserAgent"] = s.Attributes.UserAgent
	env["StartedAt"] = s.StartedAt
	env["ExpiresAt"] = s.ExpiresAt
	env["LastAccessedAt"] = s.LastAccessedAt
	env["Active"] = s.Active(now)
	env["AgeMinutes"] = minutesBetween(s.StartedAt, now)
	env["IdleMinutes"] = minutesBetween(s.LastAccessedAt, now)
	env["RemainingMinutes"] = minutesBetween(now, s.ExpiresAt)

	env["hasFactor"] = func(key string) bool {
		return slices.Contains(factors, key)
	}
	env["hasDelivery"] = func(method string) bool {
		return slices.Contains(deliveryMethods, method)
	}
	env["authenticatedWithin"] = func(minutes int) bool {
		cutoff := now.Add(-time.Duration(minutes) * time.Minute)
		for _, f := range s.AuthenticationFactors {
			if !f.LastAuthenticatedAt.Before(cutoff) {
				return true
			}
		}
		return false
	}

	maps.Copy(env, c.funcs)
	return env
}

// addHelperFunctions adds the time helpers relative to the evaluation time
func addHelperFunctions(env map[string]any, now time.Time) {
	env["Now"] = now
	env["minutesSince"] = func(t time.Time) int {
		return minutesBetween(t, now)
	}
	env["minutesUntil"] = func(t time.Time) int {
		return minutesBetween(now, t)
	}
}

func minutesBetween(from, to time.Time) int {
	return int(to.Sub(from) / time.Minute)
}
