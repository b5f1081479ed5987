// Package agents implements the three pipeline steps: the researcher
// (summarizing), the analyst (scoring) and the critic (verifying). Each
// step satisfies the Step interface and is composed by the sequential
// pipeline runner in the services package.
package agents
