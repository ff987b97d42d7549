/*
Package session provides per-session locking for the wizard controller.

Locks are reference counted and dropped as soon as no caller holds or waits
for them, so the table only grows with the number of sessions in use at once.
*/
package session
