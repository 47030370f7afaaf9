// Copyright 2016 The rvdbg Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package transportskeleton is an example that can be copy-pasted to help
// write a new JTAG transport driver under host/.
//
// You must remove all comments with FIXME. This also proves you read the
// instructions! :)
//
// FIXME: Include additional information relevant to users, including how
// to wire or configure the adapter this transport talks to.
//
// Reference
//
// FIXME: Please include a link to the adapter's datasheet or protocol
// reference. This helps everyone when the driver needs to be improved.
package transportskeleton
