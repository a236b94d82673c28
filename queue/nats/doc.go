// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package nats holds the queue producer backed by NATS JetStream. Every
// topic partition maps to a subject of one stream and publisher acks drive
// the send callbacks.
package nats
