// Package docker implements the Docker-backed session controller.
//
// A dev session is a container labeled devsession.managed-by=portkeep and
// tagged with the absolute project path it serves. The container's labels
// are the only session state portkeep reads — there is no daemon-side
// registry. The Controller satisfies the resolver's SessionController
// capability: it reports whether a session is running (and on which port)
// and requests teardown via the Docker Engine API.
package docker
