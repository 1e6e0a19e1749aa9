// Package soh rolls a battery's State of Health forward one day at a time.
//
// For every day the simulator builds the row
// [SOH0, T1·Qtr/Qnom, strategy, T4·Qtr/Qnom, day], normalizes it with the
// bundle statistics, asks the estimator for the day's capacity loss and
// subtracts it. The value reported for a day is the capacity at the start of
// that day, so the first output is always exactly 1 and every loss shows up
// one day after it was estimated.
//
// The package is single-threaded and does not log; a failing estimator aborts
// the run and no partial trajectory is returned.
package soh
