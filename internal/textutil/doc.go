// Package textutil holds small text helpers shared by the output writers.
package textutil
