// Package document provides the token, sentence and entity model that the
// qualifier engine operates on, together with the simple pipeline stages that
// produce it: a tokenizer, a sentencizer, a text normalizer and document ID
// generation.
//
// Offsets:
//   - Token.Start/End are character (byte) offsets into Document.Text
//   - Sentence and Entity Start/End are token offsets, end-exclusive
//
// Entities carry an explicit Qualifiers field. A nil Qualifiers means the
// entity has not been initialized by a qualifier detector yet.
package document
