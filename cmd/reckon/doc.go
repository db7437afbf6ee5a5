// Command reckon processes meeting-recording observations: it deduplicates
// them against the archive, classifies them, and audits the archive against
// the source-of-truth channel.
package main
