// Package hackernews fetches front-page stories from the Hacker News
// API as raw signals.
package hackernews
