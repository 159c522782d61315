// Package listfile compiles NBR list files into a ListContext.
//
// A list file is a flat sequence of sections. Each section names a resource
// type, the directory its sources live in, the directory envelopes are
// written to, and the resources (files or directories) to convert:
//
//	# textures used by the demo scene
//	section texture {
//	    local "assets/textures"
//	    out   "res/textures"
//	    resources [ "opengl.png" "paviment.jpg" ]
//	}
//
// The bracket-header form is also accepted:
//
//	[shader]
//	local_dir = "assets/shaders"
//	out_dir = "res/shaders"
//	resources = [ "default3d.glsl", "cubemap.glsl" ]
//
// Compilation is all-or-nothing: any lexical, structural or resource-type
// error rejects the whole file.
package listfile
