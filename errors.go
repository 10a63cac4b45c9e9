/*
 * errors.go, part of gosas.
 *
 * Copyright 2025 The gosas authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package sas

import "fmt"

// Error is the interface for errors that all packages in this library implement.
// The Decorate method allows to add and retrieve info from the error, without
// changing its type or wrapping it around something else. The decoration slice
// should contain the functions in the calling stack, plus, for each function,
// any relevant information, in the format "FunctionName: Extra info".
type Error interface {
	Error() string
	Decorate(string) []string //If passed an empty string, returns the current decoration without adding to it.
}

// CError is the concrete type for errors in the sas package. It implements
// sas.Error.
type CError struct {
	msg  string
	deco []string
}

func (err CError) Error() string { return err.msg }

// Decorate adds the dec string to the decoration slice of the error,
// and returns the resulting slice.
func (err CError) Decorate(dec string) []string {
	//This method does not use a pointer receiver but still alters the
	//receiver, as deco is a slice, hence a pointer itself.
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// errDecorate asserts that err implements sas.Error and decorates it with
// the caller's name before returning it. It panics on a non-sas.Error error.
func errDecorate(err error, caller string) error {
	err2 := err.(Error)
	err2.Decorate(caller)
	return err2
}

// PanicMsg is a message used for panics. It does satisfy the error interface,
// but for errors use CError.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNilData         = PanicMsg("gosas: Nil data given")
	ErrLengthMismatch  = PanicMsg("gosas: Data slices don't have the same length")
	ErrIndexOutOfRange = PanicMsg("gosas: Index out of range")
)

func cerr(caller, format string, a ...interface{}) CError {
	return CError{fmt.Sprintf(format, a...), []string{caller}}
}
