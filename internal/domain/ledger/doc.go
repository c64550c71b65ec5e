// Package ledger contains the document ledger bounded context.
//
// A Document is an order, quotation, purchase or inventory adjustment made of
// append-only lines. Stock is never stored; it is derived from the natures of
// the lines of every active document.
//
// Key concepts:
//   - Document: header with an immutable internal id and a type-prefixed number
//   - Line: article movement with quantity, price, discount and nature
//   - RemoteRef: normalized key tying a Document to a storefront order
//   - SequenceAllocator: port issuing ids under a transactional row lock
package ledger
