/*
Package decompose turns a free-text objective into a three-level plan.

A Pipeline makes two calls through a ports.Completer. The first asks for the
standard procedure behind the objective as markdown. The second embeds that
procedure and asks for goals, subgoals and actions as JSON, which Parse maps
onto a domain.Plan. Model output is tolerated around the JSON object: prose and
code fences are cut away by ExtractJSON.
*/
package decompose
