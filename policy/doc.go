// Package policy checks authenticated sessions against boolean expressions
// written in the expr language (https://expr-lang.org).
//
// # Environment
//
// Variables:
//   - SessionID, UserID, IPAddress, UserAgent: string
//   - Factors: factor keys such as "email_factor" or "phone_number_factor"
//   - DeliveryMethods, FactorTypes: per factor, in order
//   - StartedAt, ExpiresAt, LastAccessedAt, Now: time.Time
//   - Active: the session has not expired at Now
//   - AgeMinutes, IdleMinutes, RemainingMinutes: int
//
// Functions:
//   - hasFactor(key), hasDelivery(method)
//   - authenticatedWithin(minutes): any factor was used in the last minutes
//   - minutesSince(t), minutesUntil(t)
//
// The expr builtins (lower, contains, startsWith, any, all, ...) are available too.
//
// # Examples
//
//	hasFactor("email_factor") and AgeMinutes < 60
//	Active and authenticatedWithin(15) and IPAddress startsWith "10."
//	all(DeliveryMethods, # != "sms") and RemainingMinutes > 5
package policy
