// Package mock provides deterministic test doubles for the ai services.
//
// Each mock records its calls and accepts a function field that replaces the
// default behaviour, so tests can inject failures or schema errors.
package mock
