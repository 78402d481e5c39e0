// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

// Package handler routes decoded messages to user code.
//
// Callbacks is a registry with one optional function slot per message
// category. Dispatch invokes the slot matching the message type,
// synchronously and on the caller's goroutine; unregistered categories
// are silently dropped. Callbacks must not re-enter the engine's read
// cycle.
package handler
