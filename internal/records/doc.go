// Package records holds the compound values persisted through the codec:
// vectors, transforms, cameras, lights, audio and physics descriptions.
package records
