// Package magetasks holds the build, test and lint tasks behind the
// magefile, so they can be unit tested without the mage build tag.
package magetasks
