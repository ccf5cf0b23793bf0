package engine

// Camera represents a perspective camera (where you look from). It holds only projection and view state; drawing is
// done by a renderer that reads the Camera.
type Camera struct {
	Position Vector3
	Target   Vector3 // The point the Camera looks at.
	Up       Vector3

	fieldOfView float32 // Vertical field of view in degrees
	aspect      float32
	near, far   float32

	updateProjectionMatrix bool
	cachedProjectionMatrix Matrix4
}

// NewCamera creates a new perspective Camera at the origin looking down -Z. fovY is the vertical field of view in
// degrees, aspect is the viewport's width divided by its height, and near and far are the clipping planes.
func NewCamera(fovY, aspect, near, far float32) *Camera {
	return &Camera{
		Target:                 NewVector3(0, 0, -1),
		Up:                     WorldUp,
		fieldOfView:            fovY,
		aspect:                 aspect,
		near:                   near,
		far:                    far,
		updateProjectionMatrix: true,
	}
}

// LookAt points the Camera towards the target given.
func (camera *Camera) LookAt(target Vector3) {
	camera.Target = target
}

// FieldOfView returns the vertical field of view in degrees.
func (camera *Camera) FieldOfView() float32 {
	return camera.fieldOfView
}

// AspectRatio returns the aspect ratio (width / height) the projection is built for.
func (camera *Camera) AspectRatio() float32 {
	return camera.aspect
}

// SetAspectRatio sets the aspect ratio (width / height). Call UpdateProjectionMatrix afterwards to rebuild the
// projection immediately; otherwise it is rebuilt the next time Projection is called.
func (camera *Camera) SetAspectRatio(aspect float32) {
	if camera.aspect == aspect {
		return
	}
	camera.aspect = aspect
	camera.updateProjectionMatrix = true
}

// Near returns the near clipping plane distance.
func (camera *Camera) Near() float32 {
	return camera.near
}

// Far returns the far clipping plane distance.
func (camera *Camera) Far() float32 {
	return camera.far
}

// UpdateProjectionMatrix rebuilds the cached projection matrix from the current field of view, aspect ratio and
// clipping planes.
func (camera *Camera) UpdateProjectionMatrix() {
	camera.cachedProjectionMatrix = NewProjectionPerspective(camera.fieldOfView, camera.aspect, camera.near, camera.far)
	camera.updateProjectionMatrix = false
}

// Projection returns the Camera's projection matrix.
func (camera *Camera) Projection() Matrix4 {
	if camera.updateProjectionMatrix {
		camera.UpdateProjectionMatrix()
	}
	return camera.cachedProjectionMatrix
}

// ViewMatrix returns the Camera's view matrix, transforming world space into view space (the Camera looks down -Z).
func (camera *Camera) ViewMatrix() Matrix4 {
	up := camera.Up
	if up.IsZero() {
		up = WorldUp
	}
	return NewLookAtMatrix(camera.Position, camera.Target, up)
}

// WorldToClip transforms a world-space position into homogeneous clip space.
func (camera *Camera) WorldToClip(position Vector3) Vector4 {
	return camera.Projection().Mult(camera.ViewMatrix()).MultVecW(position)
}
