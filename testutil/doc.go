/*
Package testutil provides shared helpers for dispatchd tests.

It offers context helpers that register cleanup automatically, async
assertions for polling a condition until a timeout, and fixture
constructors for extensions, operation identifiers, and handler
references so individual test files do not repeat the same literals.
*/
package testutil
