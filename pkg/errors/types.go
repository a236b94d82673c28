// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package errors

var (
	// ErrMalformedEntity indicates a malformed entity specification.
	ErrMalformedEntity = New("malformed entity specification")

	// ErrNotFound indicates a non-existent entity request.
	ErrNotFound = New("entity not found")

	// ErrViewEntity indicates error in viewing entity or entities.
	ErrViewEntity = New("view entity failed")

	// ErrCreateEntity indicates error in creating entity or entities.
	ErrCreateEntity = New("failed to create entity in the db")

	// ErrConflict indicates that an entity with the same id already exists.
	ErrConflict = New("entity already exists")

	// ErrUpdateEntity indicates error in updating entity or entities.
	ErrUpdateEntity = New("update entity failed")

	// ErrRemoveEntity indicates error in removing entity.
	ErrRemoveEntity = New("failed to remove entity")

	// ErrDecode indicates a message payload that could not be decoded.
	ErrDecode = New("failed to decode message payload")

	// ErrEncode indicates a message that could not be encoded for the wire.
	ErrEncode = New("failed to encode message")

	// ErrDispatch indicates that the queue transport rejected a message.
	ErrDispatch = New("failed to dispatch message")

	// ErrSaveAttributes indicates failure to persist entity attributes.
	ErrSaveAttributes = New("failed to save attributes")

	// ErrRemoveAttributes indicates failure to remove entity attributes.
	ErrRemoveAttributes = New("failed to remove attributes")
)
